package trade

// inferStops picks, from resting orders on the closing side placed at or
// after the position opened, the nearest price on the loss side of entry
// (the protective stop) and the nearest on the profit side (the target).
// A loss-side stop carried on the entry fills is the fallback stop.
func inferStops(p *position, orders []PendingOrder) (stop, target *float64) {
	exitSide := p.direction.entrySide().Opposite()
	entry := p.avgEntry

	for _, o := range orders {
		if o.Symbol != p.symbol || o.Side != exitSide || o.PlacedTime.Before(p.openedAt) {
			continue
		}
		px, ok := o.trigger()
		if !ok {
			continue
		}

		switch {
		case lossSide(p.direction, entry, px):
			if stop == nil || nearer(px, *stop, entry) {
				v := px
				stop = &v
			}
		case profitSide(p.direction, entry, px):
			if target == nil || nearer(px, *target, entry) {
				v := px
				target = &v
			}
		}
	}

	if stop == nil && p.lastStop != nil && lossSide(p.direction, entry, *p.lastStop) {
		v := *p.lastStop
		stop = &v
	}
	return stop, target
}

// trigger is the price at which a resting order would execute.
func (o PendingOrder) trigger() (float64, bool) {
	var order []*float64
	switch o.Type {
	case StopOrder:
		order = []*float64{o.StopPrice, o.Price, o.LimitPrice}
	case LimitOrder:
		order = []*float64{o.LimitPrice, o.Price, o.StopPrice}
	default:
		order = []*float64{o.StopPrice, o.LimitPrice, o.Price}
	}
	for _, p := range order {
		if p != nil && *p > 0 {
			return *p, true
		}
	}
	return 0, false
}

func lossSide(d Direction, entry, px float64) bool {
	if d == Short {
		return px > entry
	}
	return px < entry
}

func profitSide(d Direction, entry, px float64) bool {
	if d == Short {
		return px < entry
	}
	return px > entry
}

func nearer(a, b, entry float64) bool {
	da, db := a-entry, b-entry
	if da < 0 {
		da = -da
	}
	if db < 0 {
		db = -db
	}
	return da < db
}
