package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status  int
	OrderID string
	Err     error
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	serviceType := flag.String("service", "anime", "service type tag")
	amount := flag.String("amount", "9.99", "order amount")
	n := flag.Int("n", 100, "number of create requests")
	concurrency := flag.Int("c", 20, "max concurrency")
	poll := flag.Bool("poll", true, "poll status for each created order")
	flag.Parse()

	client := &http.Client{Timeout: 15 * time.Second}

	// 1) 并发创建订单：验证 order_id 全局唯一、初始状态 pending
	fmt.Printf("start create test: service=%s amount=%s n=%d concurrency=%d\n",
		*serviceType, *amount, *n, *concurrency)
	results := runCreate(client, *baseURL, *serviceType, *amount, *n, *concurrency)
	printSummary("create", results)

	seen := make(map[string]bool)
	dup := 0
	for _, r := range results {
		if r.OrderID == "" {
			continue
		}
		if seen[r.OrderID] {
			dup++
		}
		seen[r.OrderID] = true
	}
	fmt.Printf("distinct order ids: %d, duplicates: %d\n", len(seen), dup)

	// 2) 状态轮询：新单未支付应全部 pending
	if *poll {
		pending := 0
		for id := range seen {
			st, err := getStatus(client, *baseURL, id)
			if err != nil {
				fmt.Println("status err:", err)
				continue
			}
			if st == "pending" {
				pending++
			}
		}
		fmt.Printf("polled %d orders, pending: %d\n", len(seen), pending)
	}
}

func runCreate(client *http.Client, baseURL, serviceType, amount string, n, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = createOnce(client, baseURL, serviceType, amount)
		}(i)
	}
	wg.Wait()
	return results
}

func createOnce(client *http.Client, baseURL, serviceType, amount string) Result {
	body, _ := json.Marshal(map[string]any{
		"serviceType": serviceType,
		"amount":      json.RawMessage(amount),
	})
	resp, err := client.Post(baseURL+"/payment/create", "application/json", bytes.NewReader(body))
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()

	var out struct {
		OrderID string `json:"orderId"`
	}
	b, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(b, &out)
	return Result{Status: resp.StatusCode, OrderID: out.OrderID}
}

func getStatus(client *http.Client, baseURL, orderID string) (string, error) {
	resp, err := client.Get(baseURL + "/payment/status/" + orderID)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func printSummary(name string, results []Result) {
	byStatus := make(map[int]int)
	errs := 0
	for _, r := range results {
		if r.Err != nil {
			errs++
			continue
		}
		byStatus[r.Status]++
	}
	fmt.Printf("[%s] total=%d errors=%d byStatus=%v\n", name, len(results), errs, byStatus)
}
