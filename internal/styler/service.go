package styler

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"styleapi/internal/model"
)

// 图像服务要求的最大边长，超出的图等比缩小。
const maxDimension = 1024

// Generator 抽象图像生成协作方：输入 PNG，输出变换后的 PNG。
type Generator interface {
	Variation(ctx context.Context, png []byte) ([]byte, error)
}

// Service 图像风格化请求翻译器：
// data URI 解码 → 等比缩放 → 转发生成服务 → 结果重编码为 data URI。
// 图像变换本身完全由协作方完成，这里不含任何生成算法。
type Service struct {
	gen     Generator
	styles  []model.Style
	logger  *zap.Logger
	timeout time.Duration
}

func NewService(gen Generator, styles []model.Style, logger *zap.Logger, timeout time.Duration) *Service {
	return &Service{
		gen:     gen,
		styles:  styles,
		logger:  logger,
		timeout: timeout,
	}
}

// Styles 返回风格目录，顺序与配置一致。
func (s *Service) Styles() []model.Style {
	return s.styles
}

// Process 处理一次风格化请求，出入参均为 base64 data URI。
// style 为开放标签：目录外的风格照样转发，由协作方决定效果。
func (s *Service) Process(ctx context.Context, dataURI, style string) (string, error) {
	raw, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", &model.ValidationError{Field: "image", Reason: "not a decodable image"}
	}
	// 等比缩放到边界尺寸内，Lanczos 插值
	fitted := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return "", err
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.gen.Variation(gctx, buf.Bytes())
	if err != nil {
		s.logger.Warn("image generation failed",
			zap.String("style", style),
			zap.Error(err),
		)
		return "", &model.CollaboratorError{Collaborator: "image service", Err: err}
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(out), nil
}

// decodeDataURI 解出 data URI 中的图像字节。
// 兼容裸 base64（无 "data:...;base64," 前缀）的入参。
func decodeDataURI(dataURI string) ([]byte, error) {
	payload := dataURI
	if idx := strings.IndexByte(dataURI, ','); idx >= 0 {
		payload = dataURI[idx+1:]
	}
	if strings.TrimSpace(payload) == "" {
		return nil, &model.ValidationError{Field: "image", Reason: "must not be empty"}
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &model.ValidationError{Field: "image", Reason: "invalid base64 payload"}
	}
	return raw, nil
}
