package fills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillsCSV = `id,symbol,side,quantity,price,filled_time,order_id,commission,market_date,stop_price
f1,aapl,BUY,100,10.00,2024-01-02T14:30:00Z,o1,1.00,,9.50
f2,AAPL,sell,"1,000",$11.00,2024-01-02 15:00:00,o2,,,
f1,AAPL,BUY,100,10.00,2024-01-02T14:30:00Z,o1,1.00,,
,MSFT,S,5,300,2024-01-03T01:30:00Z,,0.5,2024-01-02,
`

func TestReadFills(t *testing.T) {
	t.Parallel()

	b, err := ReadFills(strings.NewReader(fillsCSV), market.Calendar{})
	require.NoError(t, err)
	require.Len(t, b.Fills, 3)
	assert.Equal(t, 1, b.Duplicates)

	f := b.Fills[0]
	assert.Equal(t, "f1", f.ID)
	assert.Equal(t, "AAPL", f.Symbol)
	assert.Equal(t, trade.Buy, f.Side)
	assert.Equal(t, 100.0, f.Quantity)
	assert.Equal(t, 10.0, f.Price)
	assert.Equal(t, 1.0, f.Commission)
	assert.Equal(t, "o1", f.OrderID)
	assert.Equal(t, 0, f.RowIndex)
	assert.Equal(t, "2024-01-02", f.MarketDate)
	require.NotNil(t, f.StopPrice)
	assert.Equal(t, 9.5, *f.StopPrice)

	f = b.Fills[1]
	assert.Equal(t, trade.Sell, f.Side)
	assert.Equal(t, 1000.0, f.Quantity)
	assert.Equal(t, 11.0, f.Price)
	assert.Equal(t, 0.0, f.Commission)
	assert.Nil(t, f.StopPrice)
	// no offset: read as New York time
	assert.Equal(t, time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC), f.FilledTime)

	f = b.Fills[2]
	assert.Equal(t, "row-3", f.ID)
	assert.Equal(t, 3, f.RowIndex)
	assert.Equal(t, trade.Sell, f.Side)
	// explicit market date wins over the derived one
	assert.Equal(t, "2024-01-02", f.MarketDate)
}

func TestReadFillsDerivesEasternDay(t *testing.T) {
	t.Parallel()

	in := "id,symbol,side,quantity,price,filled_time\nx,SPY,BUY,1,400,2024-01-03T02:00:00Z\n"
	b, err := ReadFills(strings.NewReader(in), market.Calendar{})
	require.NoError(t, err)
	require.Len(t, b.Fills, 1)
	assert.Equal(t, "2024-01-02", b.Fills[0].MarketDate)
}

func TestReadFillsPassesBusinessInvalidRows(t *testing.T) {
	t.Parallel()

	in := "id,symbol,side,quantity,price,filled_time\nx,SPY,HOLD,0,400,2024-01-03T02:00:00Z\n"
	b, err := ReadFills(strings.NewReader(in), market.Calendar{})
	require.NoError(t, err)
	require.Len(t, b.Fills, 1)
	assert.Equal(t, trade.Side("HOLD"), b.Fills[0].Side)
}

func TestReadFillsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad quantity", "x,SPY,BUY,ten,400,2024-01-03T02:00:00Z,,", "quantity"},
		{"bad price", "x,SPY,BUY,1,,2024-01-03T02:00:00Z,,", "price"},
		{"bad time", "x,SPY,BUY,1,400,yesterday,,", "filled_time"},
		{"bad market date", "x,SPY,BUY,1,400,2024-01-03T02:00:00Z,01/02/2024,", "market_date"},
		{"infinite commission", "x,SPY,BUY,1,400,2024-01-03T02:00:00Z,,inf", "commission"},
		{"nan commission", "x,SPY,BUY,1,400,2024-01-03T02:00:00Z,,NaN", "commission"},
		{"infinite price", "x,SPY,BUY,1,+Inf,2024-01-03T02:00:00Z,,", "price"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := "id,symbol,side,quantity,price,filled_time,market_date,commission\n" + tt.row + "\n"
			_, err := ReadFills(strings.NewReader(in), market.Calendar{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFill)
			assert.Contains(t, err.Error(), "line 2")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

const ordersCSV = `symbol,side,type,quantity,price,stop_price,limit_price,placed_time
AAPL,SELL,STP,100,,9.50,,2024-01-02T14:31:00Z
aapl,SELL,LMT,100,,,12.00,
AAPL,SELL,weird,,11.5,,,
`

func TestReadOrders(t *testing.T) {
	t.Parallel()

	orders, err := ReadOrders(strings.NewReader(ordersCSV), market.Calendar{})
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, trade.StopOrder, orders[0].Type)
	require.NotNil(t, orders[0].StopPrice)
	assert.Equal(t, 9.5, *orders[0].StopPrice)
	assert.Nil(t, orders[0].Price)
	assert.Equal(t, time.Date(2024, 1, 2, 14, 31, 0, 0, time.UTC), orders[0].PlacedTime)

	assert.Equal(t, "AAPL", orders[1].Symbol)
	assert.Equal(t, trade.LimitOrder, orders[1].Type)
	require.NotNil(t, orders[1].LimitPrice)
	assert.True(t, orders[1].PlacedTime.IsZero())

	assert.Equal(t, trade.UnknownOrder, orders[2].Type)
	require.NotNil(t, orders[2].Price)
	assert.Equal(t, 0.0, orders[2].Quantity)
}

func TestReadOrdersError(t *testing.T) {
	t.Parallel()

	in := "symbol,side,type,stop_price\nAAPL,SELL,STOP,abc\n"
	_, err := ReadOrders(strings.NewReader(in), market.Calendar{})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestCSVSourceLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fp := filepath.Join(dir, "fills.csv")
	op := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(fp, []byte(fillsCSV), 0o644))
	require.NoError(t, os.WriteFile(op, []byte(ordersCSV), 0o644))

	var src Source = CSVSource{FillsPath: fp, OrdersPath: op}
	b, err := src.Load()
	require.NoError(t, err)
	assert.Len(t, b.Fills, 3)
	assert.Len(t, b.Orders, 3)

	b, err = CSVSource{FillsPath: fp}.Load()
	require.NoError(t, err)
	assert.Empty(t, b.Orders)

	_, err = CSVSource{FillsPath: filepath.Join(dir, "missing.csv")}.Load()
	assert.Error(t, err)
}
