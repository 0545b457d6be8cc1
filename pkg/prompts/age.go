package prompts

import (
	"fmt"
	"math"
	"time"
)

// deAgingThreshold 年を超えて若返る場合のみ描画指示を出します。
// 数年の差は描き分けられないため指示自体を省略します。
const deAgingThreshold = 5

const hoursPerYear = 24 * 365.25

// AgeAtMemory は思い出の日付時点での年齢を求めます。負にはなりません。
func AgeAtMemory(currentAge int, memoryDate, now time.Time) int {
	years := now.Sub(memoryDate).Hours() / hoursPerYear
	age := int(math.Round(float64(currentAge) - years))
	if age < 0 {
		return 0
	}
	return age
}

// DeAgingInstruction は現在年齢との差が閾値を超えるときだけ若返り指示文を返します。
// 閾値以下なら空文字列です。
func DeAgingInstruction(currentAge, ageAtMemory int) string {
	diff := currentAge - ageAtMemory
	if diff <= deAgingThreshold {
		return ""
	}
	return fmt.Sprintf("depict as approximately %d years old, %d years younger than current", ageAtMemory, diff)
}
