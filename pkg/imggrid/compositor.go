package imggrid

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// DefaultCanvasSize は合成キャンバス（正方形）の一辺のデフォルトです。
const DefaultCanvasSize = 1024

// 未使用セルの埋め色。無地のニュートラルグレー。
var backgroundFill = color.RGBA{R: 0xE5, G: 0xE5, B: 0xE5, A: 0xFF}

// Compose は 1..N 枚の参照画像を 1 枚のキャンバスに row-major で詰め込みます。
// 各画像はセルに対して cover フィット（アスペクト比維持・はみ出し分をクロップ）で
// リサイズされます。N=1 のときは単純なリサイズと等価です。
func Compose(images [][]byte, canvasSize int) ([]byte, GridLayout, error) {
	if len(images) == 0 {
		return nil, GridLayout{}, fmt.Errorf("%w: no images to compose", domain.ErrInvalidInput)
	}
	if canvasSize <= 0 {
		canvasSize = DefaultCanvasSize
	}

	layout := LayoutFor(len(images), canvasSize)

	// キャンバスは常に指定サイズの正方形。セル寸法の切り捨てで生じる
	// 右端・下端の余りは背景色のまま残します。
	canvas := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundFill), image.Point{}, xdraw.Src)

	for i, data := range images {
		src, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, GridLayout{}, &domain.CompositingError{Index: i, Err: err}
		}

		col := i % layout.Columns
		row := i / layout.Columns
		cell := image.Rect(
			col*layout.CellWidth,
			row*layout.CellHeight,
			(col+1)*layout.CellWidth,
			(row+1)*layout.CellHeight,
		)

		drawCover(canvas, cell, src)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return nil, GridLayout{}, fmt.Errorf("failed to encode composed canvas: %w", err)
	}
	return buf.Bytes(), layout, nil
}

// drawCover は src をアスペクト比を保ったままセルを完全に覆うように描画します。
// レターボックスは作らず、はみ出す辺を中央基準でクロップします。
func drawCover(dst *image.RGBA, cell image.Rectangle, src image.Image) {
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	cellW, cellH := cell.Dx(), cell.Dy()
	if srcW == 0 || srcH == 0 {
		return
	}

	// セルを覆うのに必要な倍率が小さい方の軸をクロップする
	srcRatio := float64(srcW) / float64(srcH)
	cellRatio := float64(cellW) / float64(cellH)

	crop := sb
	if srcRatio > cellRatio {
		// 横長すぎる: 幅を詰める
		w := int(float64(srcH) * cellRatio)
		x0 := sb.Min.X + (srcW-w)/2
		crop = image.Rect(x0, sb.Min.Y, x0+w, sb.Max.Y)
	} else if srcRatio < cellRatio {
		// 縦長すぎる: 高さを詰める
		h := int(float64(srcW) / cellRatio)
		y0 := sb.Min.Y + (srcH-h)/2
		crop = image.Rect(sb.Min.X, y0, sb.Max.X, y0+h)
	}

	xdraw.CatmullRom.Scale(dst, cell, src, crop, xdraw.Src, nil)
}
