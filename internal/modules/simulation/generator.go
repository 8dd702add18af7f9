package simulation

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jmwansa/stockledger-backend/internal/modules/catalog"
	"github.com/jmwansa/stockledger-backend/internal/modules/ledger"
	"github.com/jmwansa/stockledger-backend/internal/modules/warehouse"
)

// seedModel is one laptop model created during seeding.
type seedModel struct {
	Brand    string
	Model    string
	Category catalog.Category
}

var seedModels = []seedModel{
	{"Apple", "MacBook Pro 16", catalog.CategoryPremium},
	{"Dell", "XPS 15", catalog.CategoryPremium},
	{"Lenovo", "ThinkPad X1 Carbon", catalog.CategoryPremium},
	{"Dell", "Latitude 5420", catalog.CategoryMidrange},
	{"HP", "EliteBook 840", catalog.CategoryMidrange},
	{"Lenovo", "ThinkPad T14", catalog.CategoryMidrange},
	{"Acer", "Aspire 5", catalog.CategoryBudget},
	{"Asus", "VivoBook 15", catalog.CategoryBudget},
	{"Lenovo", "IdeaPad 3", catalog.CategoryBudget},
}

var seedLocations = []warehouse.CreateLocationRequest{
	{Code: "WH-A", Name: "Warehouse A", Kind: warehouse.KindWarehouse},
	{Code: "WH-B", Name: "Warehouse B", Kind: warehouse.KindWarehouse},
	{Code: "WH-C", Name: "Warehouse C", Kind: warehouse.KindDistribution},
}

// transferProbability is the per-product chance of a rebalancing transfer on
// any given day.
const transferProbability = 0.1

// Generator produces randomized but reproducible transaction batches. All
// randomness flows through one rand.Rand, so a fixed seed and a fixed
// starting state yield an identical batch.
type Generator struct {
	rng      *rand.Rand
	profiles map[catalog.Category]CategoryProfile
	weights  map[string]float64
}

// NewGenerator creates a generator. A zero seed is replaced with the clock
// so unconfigured runs still vary day to day.
func NewGenerator(seed int64, weights map[string]float64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		profiles: DefaultProfiles(),
		weights:  weights,
	}
}

// SeedProducts builds the product catalog created on first run. Prices are
// drawn from the category's range.
func (g *Generator) SeedProducts() []catalog.CreateProductRequest {
	requests := make([]catalog.CreateProductRequest, 0, len(seedModels))
	for i, m := range seedModels {
		profile := g.profiles[m.Category]
		price := profile.PriceMin + g.rng.Float64()*(profile.PriceMax-profile.PriceMin)
		requests = append(requests, catalog.CreateProductRequest{
			SKU:       fmt.Sprintf("LAP-%03d", i+1),
			Brand:     m.Brand,
			Name:      m.Model,
			Category:  m.Category,
			UnitPrice: float64(int(price*100)) / 100,
			MinStock:  profile.MinStock,
		})
	}
	return requests
}

// SeedLocations returns the warehouses created on first run.
func (g *Generator) SeedLocations() []warehouse.CreateLocationRequest {
	return seedLocations
}

// InitialStock seeds every (product, location) pair with an adjustment drawn
// from the category's initial range. Seeding goes through the ledger like
// any other stock change, so replaying the log from empty reproduces it.
func (g *Generator) InitialStock(products []*catalog.Product, locations []*warehouse.Location, day time.Time) []ledger.RecordRequest {
	var requests []ledger.RecordRequest
	for _, p := range products {
		profile := g.profiles[p.Category]
		for _, l := range locations {
			qty := g.intInRange(profile.InitialMin, profile.InitialMax)
			requests = append(requests, ledger.RecordRequest{
				Type:       ledger.TypeAdjustment,
				ProductID:  p.ID.String(),
				LocationID: l.ID.String(),
				Quantity:   qty,
				Reference:  "SIM-SEED",
				Note:       "initial stock seeding",
				OccurredAt: &day,
			})
		}
	}
	return requests
}

// DailyBatch generates one simulated day of activity: sales drawn per
// product by category probability, restock purchases for products under
// their minimum, and occasional rebalancing transfers. onHand maps
// (sku, location code) to current quantity and totals maps sku to the
// summed quantity; both guide restocks and transfers but the ledger remains
// the arbiter of whether a transaction is applicable.
func (g *Generator) DailyBatch(products []*catalog.Product, locations []*warehouse.Location, onHand map[[2]string]int, totals map[string]int, day time.Time) []ledger.RecordRequest {
	sorted := make([]*catalog.Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SKU < sorted[j].SKU })

	var requests []ledger.RecordRequest
	for _, p := range sorted {
		profile := g.profiles[p.Category]

		if g.rng.Float64() <= profile.SaleProbability {
			qty := g.intInRange(profile.DailyMin, profile.DailyMax)
			loc := g.pickLocation(locations)
			requests = append(requests, ledger.RecordRequest{
				Type:       ledger.TypeShipment,
				ProductID:  p.ID.String(),
				LocationID: loc.ID.String(),
				Quantity:   qty,
				Reference:  fmt.Sprintf("SIM-%s", day.Format("20060102")),
				Note:       "simulated sale",
				OccurredAt: &day,
			})
		}

		if totals[p.SKU] < p.MinStock {
			qty := g.intInRange(profile.InitialMin, profile.InitialMax)
			loc := g.pickLocation(locations)
			requests = append(requests, ledger.RecordRequest{
				Type:       ledger.TypePurchase,
				ProductID:  p.ID.String(),
				LocationID: loc.ID.String(),
				Quantity:   qty,
				Reference:  fmt.Sprintf("SIM-%s", day.Format("20060102")),
				Note:       "simulated restock",
				OccurredAt: &day,
			})
		}

		if len(locations) > 1 && g.rng.Float64() <= transferProbability {
			src, dst := g.richestAndPoorest(p.SKU, locations, onHand)
			if src != nil && dst != nil && src.ID != dst.ID {
				available := onHand[[2]string{p.SKU, src.Code}]
				if available > 1 {
					qty := 1 + g.rng.Intn(available/2+1)
					requests = append(requests, ledger.RecordRequest{
						Type:           ledger.TypeTransfer,
						ProductID:      p.ID.String(),
						LocationID:     src.ID.String(),
						DestLocationID: dst.ID.String(),
						Quantity:       qty,
						Reference:      fmt.Sprintf("SIM-%s", day.Format("20060102")),
						Note:           "simulated rebalancing transfer",
						OccurredAt:     &day,
					})
				}
			}
		}
	}
	return requests
}

func (g *Generator) intInRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

// pickLocation draws a location using the configured demand weights;
// locations without a weight share the remainder uniformly.
func (g *Generator) pickLocation(locations []*warehouse.Location) *warehouse.Location {
	total := 0.0
	for _, l := range locations {
		w, ok := g.weights[l.Code]
		if !ok {
			w = 1
		}
		total += w
	}
	roll := g.rng.Float64() * total
	for _, l := range locations {
		w, ok := g.weights[l.Code]
		if !ok {
			w = 1
		}
		roll -= w
		if roll <= 0 {
			return l
		}
	}
	return locations[len(locations)-1]
}

func (g *Generator) richestAndPoorest(sku string, locations []*warehouse.Location, onHand map[[2]string]int) (src, dst *warehouse.Location) {
	for _, l := range locations {
		qty := onHand[[2]string{sku, l.Code}]
		if src == nil || qty > onHand[[2]string{sku, src.Code}] {
			src = l
		}
		if dst == nil || qty < onHand[[2]string{sku, dst.Code}] {
			dst = l
		}
	}
	return src, dst
}
