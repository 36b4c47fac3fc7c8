package catalog

import (
	"medbuscador/internal"
	"medbuscador/internal/util"
)

const abbrevMaxLen = 18

// Merge combines the primary and supplementary catalogs into one searchable
// list. Stable: BASE rows keep their order and precede EXTRA rows. Derived
// columns are back-filled only where absent.
func Merge(main, extra []internal.Record) []internal.Record {
	out := make([]internal.Record, 0, len(main)+len(extra))
	for _, rec := range main {
		if rec.Origin == "" || rec.Origin == internal.OriginExtra {
			rec.Origin = internal.OriginBase
		}
		out = append(out, backfill(rec))
	}
	for _, rec := range extra {
		if rec.Origin == "" || rec.Origin == internal.OriginBase {
			rec.Origin = internal.OriginExtra
		}
		out = append(out, backfill(rec))
	}
	return out
}

func backfill(rec internal.Record) internal.Record {
	rec.SyncIdentity()
	if rec.ManufacturerAbbrev == "" {
		rec.ManufacturerAbbrev = util.Abbreviate(rec.Manufacturer, abbrevMaxLen)
	}
	if rec.SecondaryPriceLabel == "" {
		rec.SecondaryPriceLabel = rec.Manufacturer
	}
	return rec
}
