package fills

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/trade"
)

// fillRow is the normalized fills.csv layout. Everything is read as text
// and parsed here so a bad cell can be reported with its row.
type fillRow struct {
	ID         string `csv:"id"`
	Symbol     string `csv:"symbol"`
	Side       string `csv:"side"`
	Quantity   string `csv:"quantity"`
	Price      string `csv:"price"`
	FilledTime string `csv:"filled_time"`
	OrderID    string `csv:"order_id"`
	Commission string `csv:"commission"`
	MarketDate string `csv:"market_date"`
	StopPrice  string `csv:"stop_price"`
}

// orderRow is the normalized orders.csv layout.
type orderRow struct {
	Symbol     string `csv:"symbol"`
	Side       string `csv:"side"`
	Type       string `csv:"type"`
	Quantity   string `csv:"quantity"`
	Price      string `csv:"price"`
	StopPrice  string `csv:"stop_price"`
	LimitPrice string `csv:"limit_price"`
	PlacedTime string `csv:"placed_time"`
}

// timeLayouts are tried in order. Layouts without an offset are read in
// the calendar timezone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
}

// CSVSource reads fills (and optionally pending orders) from files.
type CSVSource struct {
	FillsPath  string
	OrdersPath string
	Calendar   market.Calendar
}

// Load implements Source.
func (s CSVSource) Load() (Batch, error) {
	f, err := os.Open(s.FillsPath)
	if err != nil {
		return Batch{}, fmt.Errorf("open fills: %w", err)
	}
	defer f.Close()

	b, err := ReadFills(f, s.Calendar)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", s.FillsPath, err)
	}

	if s.OrdersPath == "" {
		return b, nil
	}
	o, err := os.Open(s.OrdersPath)
	if err != nil {
		return Batch{}, fmt.Errorf("open orders: %w", err)
	}
	defer o.Close()

	b.Orders, err = ReadOrders(o, s.Calendar)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", s.OrdersPath, err)
	}
	return b, nil
}

// ReadFills parses normalized fills. RowIndex is the 0-based data row,
// MarketDate is derived from the calendar when the column is empty, and
// later rows repeating an id are dropped.
func ReadFills(r io.Reader, cal market.Calendar) (Batch, error) {
	var rows []*fillRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return Batch{}, fmt.Errorf("read fills: %w", err)
	}

	var b Batch
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		f, err := row.fill(i, cal)
		if err != nil {
			// header is line 1
			return Batch{}, fmt.Errorf("line %d: %w: %v", i+2, ErrInvalidFill, err)
		}
		if seen[f.ID] {
			b.Duplicates++
			continue
		}
		seen[f.ID] = true
		b.Fills = append(b.Fills, f)
	}
	return b, nil
}

func (row fillRow) fill(i int, cal market.Calendar) (trade.Fill, error) {
	f := trade.Fill{
		ID:         strings.TrimSpace(row.ID),
		Symbol:     strings.ToUpper(strings.TrimSpace(row.Symbol)),
		Side:       parseSide(row.Side),
		OrderID:    strings.TrimSpace(row.OrderID),
		MarketDate: strings.TrimSpace(row.MarketDate),
		RowIndex:   i,
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("row-%d", i)
	}

	var err error
	if f.Quantity, err = parseNumber("quantity", row.Quantity); err != nil {
		return f, err
	}
	if f.Price, err = parseNumber("price", row.Price); err != nil {
		return f, err
	}
	if strings.TrimSpace(row.Commission) != "" {
		if f.Commission, err = parseNumber("commission", row.Commission); err != nil {
			return f, err
		}
	}
	if f.StopPrice, err = parseOptional("stop_price", row.StopPrice); err != nil {
		return f, err
	}
	if f.FilledTime, err = parseTime(row.FilledTime, cal); err != nil {
		return f, fmt.Errorf("filled_time: %w", err)
	}
	if f.MarketDate == "" {
		f.MarketDate = cal.DayKey(f.FilledTime)
	} else if _, err := time.Parse(market.DayLayout, f.MarketDate); err != nil {
		return f, fmt.Errorf("market_date %q: %w", f.MarketDate, err)
	}
	return f, nil
}

// ReadOrders parses normalized pending orders.
func ReadOrders(r io.Reader, cal market.Calendar) ([]trade.PendingOrder, error) {
	var rows []*orderRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	orders := make([]trade.PendingOrder, 0, len(rows))
	for i, row := range rows {
		o, err := row.order(cal)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", i+2, ErrInvalidOrder, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (row orderRow) order(cal market.Calendar) (trade.PendingOrder, error) {
	o := trade.PendingOrder{
		Symbol: strings.ToUpper(strings.TrimSpace(row.Symbol)),
		Side:   parseSide(row.Side),
		Type:   parseType(row.Type),
	}

	var err error
	if strings.TrimSpace(row.Quantity) != "" {
		if o.Quantity, err = parseNumber("quantity", row.Quantity); err != nil {
			return o, err
		}
	}
	if o.Price, err = parseOptional("price", row.Price); err != nil {
		return o, err
	}
	if o.StopPrice, err = parseOptional("stop_price", row.StopPrice); err != nil {
		return o, err
	}
	if o.LimitPrice, err = parseOptional("limit_price", row.LimitPrice); err != nil {
		return o, err
	}
	if strings.TrimSpace(row.PlacedTime) != "" {
		if o.PlacedTime, err = parseTime(row.PlacedTime, cal); err != nil {
			return o, fmt.Errorf("placed_time: %w", err)
		}
	}
	return o, nil
}

func parseSide(s string) trade.Side {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "B", "BOT", "BOUGHT":
		return trade.Buy
	case "SELL", "S", "SLD", "SOLD":
		return trade.Sell
	default:
		return trade.Side(strings.ToUpper(strings.TrimSpace(s)))
	}
}

func parseType(s string) trade.OrderType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STOP", "STP", "STOP LIMIT", "STOP_LIMIT":
		return trade.StopOrder
	case "LIMIT", "LMT":
		return trade.LimitOrder
	case "MARKET", "MKT":
		return trade.MarketOrder
	default:
		return trade.UnknownOrder
	}
}

func parseNumber(field, s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %q: not a number", field, s)
	}
	return v, nil
}

func parseOptional(field, s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := parseNumber(field, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseTime(s string, cal market.Calendar) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, cal.Location()); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
