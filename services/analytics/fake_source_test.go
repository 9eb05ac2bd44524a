package analytics

import (
	"context"
	"sort"
	"time"

	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memSource mirrors the Mongo filters over in-memory slices.
type memSource struct {
	orders     []models.Order
	products   []models.Product
	categories map[primitive.ObjectID]string
	err        error
	panicOn    string
	orderReads int
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func (m *memSource) FindOrders(_ context.Context, f OrderFilter) ([]models.Order, error) {
	m.orderReads++
	if m.panicOn == "orders" {
		panic("boom")
	}
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Order
	for _, o := range m.orders {
		if !inWindow(o.CreatedAt, f.From, f.To) {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, s := range f.Statuses {
				if o.Status == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memSource) CountProducts(_ context.Context, from, to *time.Time) (int64, error) {
	var n int64
	for _, p := range m.products {
		if inWindow(p.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

func (m *memSource) MostClickedProducts(_ context.Context, limit int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.products {
		if p.Clicks > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Clicks > out[j].Clicks })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memSource) FindProducts(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Product
	for _, p := range m.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memSource) CategoryNames(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := map[primitive.ObjectID]string{}
	for _, id := range ids {
		if name, ok := m.categories[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}
