package booking

import (
	"strconv"

	"github.com/patrickmn/go-cache"
)

// Overrides shadows backend statuses with the result of optimistic mutations
// until the next authoritative fetch of the booking.
type Overrides struct {
	items *cache.Cache
}

func NewOverrides() *Overrides {
	return &Overrides{items: cache.New(cache.NoExpiration, 0)}
}

func (o *Overrides) Get(id int64) (Status, bool) {
	value, found := o.items.Get(cacheKey(id))

	if !found {
		return "", false
	}

	return value.(Status), true
}

func (o *Overrides) Set(id int64, status Status) {
	o.items.Set(cacheKey(id), status, cache.NoExpiration)
}

func (o *Overrides) Clear(id int64) {
	o.items.Delete(cacheKey(id))
}

func (o *Overrides) Len() int {
	return o.items.ItemCount()
}

func (o *Overrides) Effective(b Booking) Status {
	if status, found := o.Get(b.ID); found {
		return status
	}

	return b.Status
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
