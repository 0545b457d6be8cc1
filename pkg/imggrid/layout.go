package imggrid

// GridLayout は参照画像を詰め込むグリッドの形状です。派生値であり永続化しません。
// 不変条件: Columns*Rows >= 画像枚数。
type GridLayout struct {
	Columns    int
	Rows       int
	CellWidth  int
	CellHeight int
}

// LayoutFor は枚数 n に対する固定の優先表からグリッド形状を引きます。
// 探索はせず、常に同じ入力から同じレイアウトを返します。
func LayoutFor(n, canvasSize int) GridLayout {
	var cols, rows int
	switch {
	case n <= 1:
		cols, rows = 1, 1
	case n == 2:
		cols, rows = 2, 1
	case n == 3:
		cols, rows = 3, 1
	case n == 4:
		cols, rows = 2, 2
	case n <= 6:
		cols, rows = 3, 2
	case n <= 9:
		cols, rows = 3, 3
	default:
		cols = 4
		rows = (n + 3) / 4
	}

	return GridLayout{
		Columns:    cols,
		Rows:       rows,
		CellWidth:  canvasSize / cols,
		CellHeight: canvasSize / rows,
	}
}

// Cell は row-major 順で i 番目のセルの (row, column) を 1 始まりで返します。
func (l GridLayout) Cell(i int) (row, col int) {
	return i/l.Columns + 1, i%l.Columns + 1
}
