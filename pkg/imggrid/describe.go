package imggrid

import (
	"fmt"
	"strings"
)

// Describe はグリッドの各セルに誰が写っているかを説明するテキストを生成します。
// (layout, names) のみから決まる純関数で、占有セルの対応は row-major です。
// 生成モデルに渡すため本文は英語です。
func Describe(layout GridLayout, names []string) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) == 1 {
		return fmt.Sprintf("the reference image shows: %s", names[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "the reference image is a %dx%d grid containing %d people:\n",
		layout.Columns, layout.Rows, len(names))

	for i, name := range names {
		if layout.Rows == 1 {
			fmt.Fprintf(&b, "- position %d: %s\n", i+1, name)
		} else {
			row, col := layout.Cell(i)
			fmt.Fprintf(&b, "- row %d, column %d: %s\n", row, col, name)
		}
	}

	b.WriteString("Use the grid to preserve each person's facial identity.")
	return b.String()
}
