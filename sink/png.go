package sink

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

const (
	ihdrEnd       = 8 + 4 + 4 + 13 + 4 // 文件签名 + IHDR 块
	metersPerInch = 0.0254
)

// EnsurePHYs 在图像尚无 pHYs 块时，于 IHDR 之后插入给定分辨率的 pHYs 块。
func EnsurePHYs(pngData []byte, dpi int) ([]byte, bool, error) {
	if len(pngData) < ihdrEnd {
		return nil, false, errors.New("PNG 数据过短")
	}
	if !bytes.Equal(pngData[:8], pngSignature) {
		return nil, false, errors.New("不是 PNG 数据")
	}
	if string(pngData[12:16]) != "IHDR" {
		return nil, false, errors.New("PNG 未以 IHDR 开头")
	}
	if dpi <= 0 {
		return nil, false, errors.New("dpi 必须为正数")
	}

	// pHYs 必须位于首个 IDAT 之前，查找到此为止
	for off := ihdrEnd; off+8 <= len(pngData); {
		length := int(binary.BigEndian.Uint32(pngData[off:]))
		kind := string(pngData[off+4 : off+8])
		if kind == "pHYs" {
			return pngData, false, nil
		}
		if kind == "IDAT" || kind == "IEND" {
			break
		}
		off += 12 + length
	}

	ppm := uint32(float64(dpi)/metersPerInch + 0.5)
	chunk := new(bytes.Buffer)
	_ = binary.Write(chunk, binary.BigEndian, uint32(9)) // 长度
	chunk.WriteString("pHYs")
	_ = binary.Write(chunk, binary.BigEndian, ppm)
	_ = binary.Write(chunk, binary.BigEndian, ppm)
	chunk.WriteByte(1) // 单位：米
	_ = binary.Write(chunk, binary.BigEndian, crc32.ChecksumIEEE(chunk.Bytes()[4:]))

	buf := new(bytes.Buffer)
	buf.Grow(len(pngData) + chunk.Len())
	buf.Write(pngData[:ihdrEnd])
	buf.Write(chunk.Bytes())
	buf.Write(pngData[ihdrEnd:])
	return buf.Bytes(), true, nil
}

// DPIFromPNG 返回 pHYs 块中记录的分辨率（如有）。
func DPIFromPNG(pngData []byte) (int, bool) {
	if len(pngData) < ihdrEnd || !bytes.Equal(pngData[:8], pngSignature) {
		return 0, false
	}
	for off := 8; off+8 <= len(pngData); {
		length := int(binary.BigEndian.Uint32(pngData[off:]))
		kind := string(pngData[off+4 : off+8])
		if kind == "pHYs" && length == 9 && off+8+9 <= len(pngData) {
			data := pngData[off+8 : off+8+9]
			if data[8] != 1 {
				return 0, false
			}
			ppm := binary.BigEndian.Uint32(data)
			return int(float64(ppm)*metersPerInch + 0.5), true
		}
		if kind == "IDAT" || kind == "IEND" {
			break
		}
		off += 12 + length
	}
	return 0, false
}
