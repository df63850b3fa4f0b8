package id

import (
	"bytes"
	cryptoRand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// OpenExit stands in for the exit timestamp of a trade that is still open.
const OpenExit = "OPEN"

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a random, time-sortable ULID. It is used for journal import
// runs, never for trades.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Errors are extremely unlikely unless time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

// TradeKey holds the semantic fields a trade id is derived from.
type TradeKey struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   *time.Time
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	Legs       int
}

// String joins the key fields with "|". Timestamps are UTC ISO-8601 with
// millisecond precision.
func (k TradeKey) String() string {
	exit := OpenExit
	if k.ExitTime != nil {
		exit = iso(*k.ExitTime)
	}
	return strings.Join([]string{
		k.Symbol,
		iso(k.EntryTime),
		exit,
		num(k.Quantity),
		num(k.EntryPrice),
		num(k.ExitPrice),
		strconv.Itoa(k.Legs),
	}, "|")
}

// Trade returns the deterministic id for a trade. The id is a ULID whose
// timestamp is the entry time and whose entropy is the SHA-256 of the key,
// so ids sort by entry and the same key always yields the same id.
func Trade(k TradeKey) string {
	sum := sha256.Sum256([]byte(k.String()))

	id, err := ulid.New(ulid.Timestamp(k.EntryTime.UTC()), bytes.NewReader(sum[:10]))
	if err != nil {
		// entry time outside the ULID range
		return hex.EncodeToString(sum[:13])
	}
	return id.String()
}

func iso(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
