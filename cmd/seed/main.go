package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"org-subscription-saas/internal/config"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/repository"
	pg "org-subscription-saas/internal/infra/db/postgres"
)

// Per-user monthly prices in kopecks. Longer commitments get a lower rate,
// bigger seat counts get a volume discount.
var basePrices = map[model.TariffDuration]int64{
	model.DurationMonthly:  50000, // 500 RUB/user/month
	model.DurationAnnually: 40000,
	model.DurationTwoYears: 32000,
}

var volumeDiscount = map[int]int64{
	50:   0,
	100:  5,  // percent
	250:  10,
	500:  15,
	1000: 20,
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tariffs := pg.NewTariffRepo(pool)
	existing, err := tariffs.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list tariffs: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d tariffs already present. No changes.\n", len(existing))
		return
	}

	n := 0
	for _, duration := range []model.TariffDuration{model.DurationMonthly, model.DurationAnnually, model.DurationTwoYears} {
		for _, users := range model.UserCounts {
			price := basePrices[duration] * (100 - volumeDiscount[users]) / 100
			t, err := model.NewTariff(uuid.NewString(), duration, users, price)
			if err != nil {
				log.Fatalf("tariff %s/%d: %v", duration, users, err)
			}
			if err := tariffs.Save(ctx, repository.NoTX, t); err != nil {
				log.Fatalf("save tariff %s/%d: %v", duration, users, err)
			}
			fmt.Printf("  + %s x %d users: %d kopecks/user/month (total %d)\n",
				duration, users, price, t.TotalPrice())
			n++
		}
	}
	fmt.Printf("seeded %d tariffs\n", n)
}
