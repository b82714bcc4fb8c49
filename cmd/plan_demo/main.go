package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"wayfare/internal/ai"
	"wayfare/internal/infra"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/service"
	"wayfare/internal/types"
)

func main() {
	location := flag.String("location", "San Francisco, CA", "city to plan in")
	budget := flag.Float64("budget", 200, "budget in dollars")
	interests := flag.String("interests", "museums,parks", "comma separated interests")
	hours := flag.Duration("window", 8*time.Hour, "length of the day")
	flag.Parse()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	logger, err := infra.NewLogger(false, "info")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, apiKey, ai.WithLogger(logger.Named("gemini")))
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	estimator := itinerary.NewEstimator(provider,
		itinerary.WithQuoteCache(itinerary.NewMemoryQuoteCache()),
		itinerary.WithEstimatorLogger(logger.Named("transit")))
	scheduler := itinerary.NewScheduler(estimator, itinerary.WithLogger(logger.Named("scheduler")))
	planner := service.NewTripPlanner(provider, provider, scheduler, nil, logger.Named("planner"))

	start := time.Now().Truncate(time.Hour).Add(time.Hour)
	res, err := planner.PlanTrip(ctx, service.PlanRequest{
		Location:  *location,
		Budget:    types.FromDollars(*budget),
		Interests: strings.Split(*interests, ","),
		Start:     start,
		End:       start.Add(*hours),
	})
	if err != nil {
		log.Fatalf("Error planning trip: %v", err)
	}

	for _, it := range res.Plan.Items {
		switch it.Kind {
		case itinerary.KindVenue:
			fmt.Printf("%s-%s  %-40s $%6.2f\n", it.Start.Format("15:04"), it.End.Format("15:04"), it.Candidate.Name, it.Cost().Dollars())
		case itinerary.KindTransit:
			fmt.Printf("%s-%s    %s\n", it.Start.Format("15:04"), it.End.Format("15:04"), it.Leg.Description)
		}
	}
	fmt.Printf("Spent $%.2f of $%.2f\n\n", res.Plan.Spent.Dollars(), res.Plan.Budget.Dollars())

	out, _ := json.MarshalIndent(res.Plan.View(), "", "  ")
	fmt.Println(string(out))
}
