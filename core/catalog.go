package core

import "time"

// Rating 是商品评分聚合。
type Rating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ItemAnalytics 是商品侧的参与度计数器。
// 计数器由 CatalogStore 原子自增（increment），不做整文档读改写。
type ItemAnalytics struct {
	Views     int64 `json:"views"`
	Likes     int64 `json:"likes"`
	Purchases int64 `json:"purchases"`
}

// CatalogItem 是商品目录条目，对本子系统只读（计数器除外）。
type CatalogItem struct {
	ID          string        `json:"id"`
	Category    string        `json:"category"`
	Subcategory string        `json:"subcategory,omitempty"`
	Brand       string        `json:"brand,omitempty"`
	Price       float64       `json:"price"`
	Rating      Rating        `json:"rating"`
	Analytics   ItemAnalytics `json:"analytics"`
	VendorID    string        `json:"vendor_id,omitempty"`
	VendorName  string        `json:"vendor_name,omitempty"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CounterKind 标识商品侧的某个计数器。
type CounterKind string

const (
	CounterViews     CounterKind = "views"
	CounterLikes     CounterKind = "likes"
	CounterPurchases CounterKind = "purchases"
)

// SortBy 是目录查询的排序方式。
type SortBy string

const (
	SortByNewest    SortBy = "newest"
	SortByRating    SortBy = "rating"
	SortByViews     SortBy = "views"
	SortByPurchases SortBy = "purchases"
)

// CatalogQuery 是目录查询条件；各过滤条件之间为 AND，列表内为 OR。
// PriceMax <= 0 表示价格上限未设置。
type CatalogQuery struct {
	Categories []string
	Brands     []string
	VendorIDs  []string
	PriceMin   float64
	PriceMax   float64
	OnlyActive bool
	SortBy     SortBy
	Limit      int
}

// Matches 判断条目是否满足查询的过滤条件（不含排序/截断）。
func (q CatalogQuery) Matches(item *CatalogItem) bool {
	if item == nil {
		return false
	}
	if q.OnlyActive && !item.IsActive {
		return false
	}
	if len(q.Categories) > 0 && !containsString(q.Categories, item.Category) {
		return false
	}
	if len(q.Brands) > 0 && !containsString(q.Brands, item.Brand) {
		return false
	}
	if len(q.VendorIDs) > 0 && !containsString(q.VendorIDs, item.VendorID) {
		return false
	}
	if q.PriceMin > 0 && item.Price < q.PriceMin {
		return false
	}
	if q.PriceMax > 0 && item.Price > q.PriceMax {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// priceBands 定义价格带分桶，升序排列。
var priceBands = []struct {
	name string
	min  float64
	max  float64 // 0 表示无上限
}{
	{"budget", 0, 25},
	{"value", 25, 75},
	{"mid", 75, 200},
	{"premium", 200, 500},
	{"luxury", 500, 0},
}

// PriceBand 把价格映射到价格带名称。
func PriceBand(price float64) string {
	for _, b := range priceBands {
		if b.max <= 0 || price < b.max {
			return b.name
		}
	}
	return priceBands[len(priceBands)-1].name
}

// PriceBandRange 返回价格带对应的区间；未知价格带时 ok 为 false。
func PriceBandRange(band string) (min, max float64, ok bool) {
	for _, b := range priceBands {
		if b.name == band {
			return b.min, b.max, true
		}
	}
	return 0, 0, false
}
