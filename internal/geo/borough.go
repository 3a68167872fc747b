package geo

import (
	"regexp"
	"strconv"

	"github.com/hitoshi/nycbites/internal/model"
)

// zipPattern は住所中の最初の5桁の数字列に一致する。
var zipPattern = regexp.MustCompile(`\d{5}`)

// zipRange は区に対応する郵便番号の範囲（両端を含む）。
type zipRange struct {
	lo, hi  int
	borough model.Borough
}

var zipRanges = []zipRange{
	{10001, 10048, model.BoroughManhattan},
	{10101, 10199, model.BoroughManhattan},
	{10270, 10282, model.BoroughManhattan},
	{11201, 11256, model.BoroughBrooklyn},
	{11004, 11005, model.BoroughQueens},
	{11101, 11109, model.BoroughQueens},
	{11351, 11390, model.BoroughQueens},
	{11411, 11436, model.BoroughQueens},
	{11691, 11697, model.BoroughQueens},
	{10451, 10475, model.BoroughBronx},
	{10301, 10314, model.BoroughStatenIsland},
}

// ExtractZip は住所から最初の5桁の数字列を取り出す。見つからない場合は ok = false。
func ExtractZip(formattedAddress string) (string, bool) {
	zip := zipPattern.FindString(formattedAddress)
	return zip, zip != ""
}

// Classify は住所の郵便番号から区を判定する。
// 郵便番号がない、またはどの範囲にも含まれない場合は ok = false。
func Classify(formattedAddress string) (model.Borough, bool) {
	zip, ok := ExtractZip(formattedAddress)
	if !ok {
		return "", false
	}
	return ClassifyZip(zip)
}

// ClassifyZip は5桁の郵便番号から区を判定する。
func ClassifyZip(zip string) (model.Borough, bool) {
	n, err := strconv.Atoi(zip)
	if err != nil {
		return "", false
	}
	for _, r := range zipRanges {
		if n >= r.lo && n <= r.hi {
			return r.borough, true
		}
	}
	return "", false
}
