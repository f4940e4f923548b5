package styler

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator 调用 OpenAI 图像变体接口生成风格化结果。
type OpenAIGenerator struct {
	client *openai.Client
}

func NewOpenAIGenerator(apiKey string) *OpenAIGenerator {
	return &OpenAIGenerator{client: openai.NewClient(apiKey)}
}

// Variation 提交 PNG 生成变体，结果取 b64_json 避免再回源下载图片 URL。
// SDK 的变体接口只收 *os.File，这里经临时文件中转。
func (g *OpenAIGenerator) Variation(ctx context.Context, png []byte) ([]byte, error) {
	f, err := os.CreateTemp("", "styleapi-*.png")
	if err != nil {
		return nil, err
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	if _, err := f.Write(png); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	resp, err := g.client.CreateVariImage(ctx, openai.ImageVariRequest{
		Image:          f,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image variation returned no data")
	}
	return base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
}
