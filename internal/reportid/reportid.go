// Package reportid генерирует и нормализует публичные идентификаторы отчётов
// вида SM-<timestamp36>-<random4>.
package reportid

import (
	"crypto/rand"
	"io"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	Prefix       = "SM"
	suffixLength = 4
	alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var pattern = regexp.MustCompile(`^SM-[0-9A-Z]+-[0-9A-Z]{4}$`)

// Generator собирает идентификаторы. Уникальность не гарантируется:
// два вызова в одну миллисекунду могут совпасть, проверку делает хранилище.
type Generator struct {
	now    func() time.Time
	random io.Reader
}

// NewGenerator создаёт генератор на системных часах и crypto/rand.
func NewGenerator() *Generator {
	return &Generator{now: time.Now, random: rand.Reader}
}

// NewGeneratorWith позволяет подменить часы и источник случайности (для тестов).
func NewGeneratorWith(now func() time.Time, random io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if random == nil {
		random = rand.Reader
	}
	return &Generator{now: now, random: random}
}

// Generate возвращает новый идентификатор.
func (g *Generator) Generate() (string, error) {
	timestamp := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))

	suffix := make([]byte, suffixLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range suffix {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", err
		}
		suffix[i] = alphabet[n.Int64()]
	}

	return Prefix + "-" + timestamp + "-" + string(suffix), nil
}

// Normalize приводит введённый пользователем идентификатор к каноническому виду.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Valid проверяет формат идентификатора (после Normalize).
func Valid(id string) bool {
	return pattern.MatchString(id)
}
