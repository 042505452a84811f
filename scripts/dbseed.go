package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"sprout/internal/database"
	"sprout/internal/repository"
)

// Config
const (
	DBPath       = "./data/sprout.db"
	DemoEmail    = "demo@plant-tamagotchi.com"
	DemoName     = "Demo User"
	DemoPassword = "demo1234"
)

type seedPlant struct {
	Name    string
	Species string
	Freq    int
	DaysAgo int // -1 means never watered
	Notes   string
}

type seedWatering struct {
	PlantIdx int
	DaysAgo  int
	Notes    string
}

var plants = []seedPlant{
	{"Monstera Deliciosa", "Monstera deliciosa", 7, 5, "Loves bright, indirect light. Starting to develop fenestrations!"},
	{"Snake Plant", "Sansevieria trifasciata", 14, 16, "Very low maintenance. Perfect for beginners."},
	{"Fiddle Leaf Fig", "Ficus lyrata", 10, 12, "Drama queen! Very sensitive to overwatering and underwatering."},
	{"Peace Lily", "Spathiphyllum wallisii", 5, 2, "Droops dramatically when thirsty - great natural indicator!"},
	{"Pothos", "Epipremnum aureum", 7, -1, "Propagated from my friend's plant. Should root easily in water."},
	{"Rubber Plant", "Ficus elastica", 8, 1, "Beautiful glossy leaves. Wipe them weekly for best shine."},
	{"Spider Plant", "Chlorophytum comosum", 6, 8, "Producing lots of babies! Need to propagate them soon."},
	{"ZZ Plant", "Zamioculcas zamiifolia", 21, 10, "Almost indestructible. Perfect for my dark corner."},
}

var waterings = []seedWatering{
	{0, 12, "First watering after repotting"},
	{0, 5, "Regular watering - new leaf unfurling!"},
	{1, 30, "Initial watering when I got it"},
	{1, 16, "Soil was completely dry - finally watered it!"},
	{3, 7, "Was starting to droop dramatically"},
	{3, 2, "Regular maintenance watering - looking perky again"},
	{5, 9, "After cleaning the leaves - they look so shiny!"},
	{5, 1, "Regular watering + photo to track new growth"},
}

func main() {
	pterm.DefaultHeader.WithFullWidth().WithBackgroundStyle(pterm.NewStyle(pterm.BgLightGreen)).WithTextStyle(pterm.NewStyle(pterm.FgBlack)).Println("SPROUT DATABASE SEEDER")
	pterm.Println()

	data := pterm.TableData{
		{"Database", color.New(color.FgCyan).Sprint(DBPath)},
		{"Demo Login", color.New(color.FgYellow).Sprint(DemoEmail)},
		{"Plants", color.New(color.FgYellow).Sprintf("%d", len(plants))},
		{"Watering Records", color.New(color.FgYellow).Sprintf("%d", len(waterings))},
	}
	_ = pterm.DefaultTable.WithBoxed().WithData(data).Render()
	pterm.Println()

	db, err := database.Open(DBPath)
	if err != nil {
		pterm.Error.Printf("Could not open database: %v\n", err)
		os.Exit(1)
	}

	// Clear existing data, children first
	db.Exec("DELETE FROM watering_histories")
	db.Exec("DELETE FROM plant_photos")
	db.Exec("DELETE FROM plants")
	db.Exec("DELETE FROM users")
	pterm.Info.Println("Cleared existing data")

	repo := repository.New(db)

	user, err := repo.CreateUser(DemoEmail, DemoName, DemoPassword)
	if err != nil {
		pterm.Error.Printf("Could not create demo user: %v\n", err)
		os.Exit(1)
	}
	pterm.Info.Printf("Created demo user (%s / %s)\n", DemoEmail, DemoPassword)

	bar, _ := pterm.DefaultProgressbar.
		WithTotal(len(plants)).
		WithTitle("Planting...").
		WithShowCount(true).
		Start()

	now := time.Now()
	created := make([]*database.Plant, 0, len(plants))

	for _, sp := range plants {
		species := sp.Species
		notes := sp.Notes
		p, err := repo.CreatePlant(user.ID, repository.CreatePlantInput{
			Name:                  sp.Name,
			Species:               &species,
			WateringFrequencyDays: sp.Freq,
			Notes:                 &notes,
		})
		if err != nil {
			bar.Stop()
			pterm.Error.Printf("Could not create plant %s: %v\n", sp.Name, err)
			os.Exit(1)
		}

		// Backdate the last watering stamp; a fresh row always starts at nil.
		if sp.DaysAgo >= 0 {
			watered := now.Add(-time.Duration(sp.DaysAgo) * 24 * time.Hour)
			p.LastWatered = &watered
			db.Model(&database.Plant{}).Where("id = ?", p.ID).Update("last_watered", watered)
		}

		created = append(created, p)
		bar.Increment()
	}
	bar.Stop()

	for _, wh := range waterings {
		notes := wh.Notes
		db.Create(&database.WateringHistory{
			ID:        uuid.NewString(),
			PlantID:   created[wh.PlantIdx].ID,
			WateredAt: now.Add(-time.Duration(wh.DaysAgo) * 24 * time.Hour),
			Notes:     &notes,
		})
	}
	pterm.Info.Printf("Created %d watering history records\n", len(waterings))

	// Seed Summary
	pterm.Println()
	pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgGreen)).Println("SEED SUMMARY")

	summary := pterm.TableData{{"Plant", "Frequency", "Last Watered", "Status"}}
	for _, p := range created {
		lastWatered := "Never"
		overdue := true
		if p.LastWatered != nil {
			daysSince := int(now.Sub(*p.LastWatered).Hours() / 24)
			lastWatered = fmt.Sprintf("%d days ago", daysSince)
			overdue = daysSince >= p.WateringFrequencyDays
		}

		statusText := color.GreenString("OK")
		if overdue {
			statusText = color.RedString("OVERDUE")
		}

		summary = append(summary, []string{
			p.Name,
			fmt.Sprintf("every %d days", p.WateringFrequencyDays),
			lastWatered,
			statusText,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(summary).Render()

	pterm.Println()
	pterm.Success.Println("Seed completed successfully!")
}
