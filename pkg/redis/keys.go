package redis

import "fmt"

// OrderKey 统一约定订单哈希键名。
func OrderKey(orderID string) string {
	return fmt.Sprintf("styleapi:order:%s", orderID)
}

// RateLimitKey 创建订单接口的按 IP 限流键。
func RateLimitKey(ip string) string {
	return fmt.Sprintf("styleapi:rate_limit:create:%s", ip)
}
