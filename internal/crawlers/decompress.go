package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"github.com/andybalholm/brotli"
)

var gzipMagic = []byte{0x1f, 0x8b}

// decompressResponse 根据Content-Encoding头部解压响应体
// colly已经解开的gzip响应会原样返回
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	var reader io.Reader
	switch encoding {
	case "gzip", "x-gzip":
		if !bytes.HasPrefix(body, gzipMagic) {
			return body, nil
		}
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer gr.Close()
		reader = gr

	case "deflate":
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		reader = fr

	case "br":
		reader = brotli.NewReader(bytes.NewReader(body))

	case "", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", encoding, err)
	}
	return decompressed, nil
}
