// Package imageutil 提供视觉推理前的图片归一化：
// 统一为固定分辨率的方形 JPEG，并编码为 data URI 便于内嵌请求体。
package imageutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // 解码注册
	"image/jpeg"
	_ "image/png" // 解码注册

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // 解码注册

	"github.com/BaSui01/mediaflow/media"
)

// 归一化默认参数。
const (
	DefaultDimension = 512
	DefaultQuality   = 85
)

// NormalizeSquare 解码图片并归一化为 dim×dim 的 JPEG 字节。
// 居中裁剪保持构图，Lanczos 重采样保持清晰度。
// dim/quality 非法时取默认值；无法解码返回 DECODE_ERROR。
func NormalizeSquare(b []byte, dim, quality int) ([]byte, error) {
	if len(b) == 0 {
		return nil, media.NewError(media.ErrArgument, "image payload is empty")
	}
	if dim <= 0 {
		dim = DefaultDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, media.NewError(media.ErrDecode, "decode image").WithCause(err)
	}

	square := imaging.Fill(img, dim, dim, imaging.Center, imaging.Lanczos)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, square, &jpeg.Options{Quality: quality}); err != nil {
		return nil, media.NewError(media.ErrDecode, "encode JPEG").WithCause(err)
	}
	return out.Bytes(), nil
}

// DataURI 把 JPEG 字节编码为 data URI，用于 image_url 内容分片。
func DataURI(jpegBytes []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", "image/jpeg",
		base64.StdEncoding.EncodeToString(jpegBytes))
}
