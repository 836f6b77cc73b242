package main

import (
	"fmt"
	"log"
	"time"

	"viabus/internal/buses"
	"viabus/internal/routes"
	"viabus/internal/shared/config"
	"viabus/internal/shared/database"
	"viabus/internal/users"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting ViaBus Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"tickets",
		"segment_prices",
		"route_stations",
		"routes",
		"buses",
		"users",
	}

	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll populates a small fleet and a few Turkish intercity routes with
// intermediate stations and segment prices.
func (s *Seeder) SeedAll() error {
	if err := s.seedUsers(); err != nil {
		return err
	}

	fleet, err := s.seedBuses()
	if err != nil {
		return err
	}

	return s.seedRoutes(fleet)
}

func (s *Seeder) seedUsers() error {
	seedUsers := []users.User{
		{FirstName: "Sistem", LastName: "Yönetici", Email: "admin@viabus.com.tr", Phone: "5320000001", Role: users.RoleAdmin},
		{FirstName: "Gişe", LastName: "Görevlisi", Email: "agent@viabus.com.tr", Phone: "5320000002", Role: users.RoleAgent},
		{FirstName: "Ayşe", LastName: "Yılmaz", Email: "ayse@example.com", Phone: "5321112233", Role: users.RoleCustomer},
		{FirstName: "Mehmet", LastName: "Demir", Email: "mehmet@example.com", Phone: "5334445566", Role: users.RoleCustomer},
	}

	for i := range seedUsers {
		if err := s.db.PostgreSQL.Create(&seedUsers[i]).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", seedUsers[i].Email, err)
		}
	}

	fmt.Printf("   👤 %d users created\n", len(seedUsers))
	return nil
}

func (s *Seeder) seedBuses() ([]buses.Bus, error) {
	fleet := []buses.Bus{
		{Plate: "34 VB 1001", Model: "Mercedes-Benz Travego", SeatCount: 46, IsActive: true},
		{Plate: "34 VB 1002", Model: "MAN Lion's Coach", SeatCount: 48, IsActive: true},
		{Plate: "06 VB 2001", Model: "Setra S 519 HD", SeatCount: 44, IsActive: true},
	}

	for i := range fleet {
		if err := s.db.PostgreSQL.Create(&fleet[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to seed bus %s: %w", fleet[i].Plate, err)
		}
	}

	fmt.Printf("   🚌 %d buses created\n", len(fleet))
	return fleet, nil
}

func (s *Seeder) seedRoutes(fleet []buses.Bus) error {
	tomorrow := time.Now().AddDate(0, 0, 1)
	depart := func(hour, minute int) time.Time {
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, minute, 0, 0, time.Local)
	}

	seedRoutes := []routes.Route{
		{
			FromCity:      "İstanbul",
			ToCity:        "Ankara",
			DepartureTime: depart(9, 0),
			ArrivalTime:   depart(15, 30),
			Price:         650,
			Type:          "STANDARD",
			IsActive:      true,
			BusID:         fleet[0].ID,
			RouteStations: []routes.RouteStation{
				{Station: "İzmit", Time: depart(10, 30), Order: 0},
				{Station: "Bolu", Time: depart(12, 45), Order: 1},
			},
			Prices: []routes.SegmentPrice{
				{FromCity: "İstanbul", ToCity: "İzmit", Price: 200, IsSold: true},
				{FromCity: "İzmit", ToCity: "Ankara", Price: 500, IsSold: true},
				{FromCity: "Bolu", ToCity: "Ankara", Price: 250, IsSold: true},
			},
		},
		{
			FromCity:      "İstanbul",
			ToCity:        "İzmir",
			DepartureTime: depart(22, 0),
			ArrivalTime:   depart(22, 0).Add(8 * time.Hour),
			Price:         750,
			Type:          "PREMIUM",
			IsActive:      true,
			BusID:         fleet[1].ID,
			RouteStations: []routes.RouteStation{
				{Station: "Bursa", Time: depart(22, 0).Add(2 * time.Hour), Order: 0},
				{Station: "Balıkesir", Time: depart(22, 0).Add(4 * time.Hour), Order: 1},
			},
			Prices: []routes.SegmentPrice{
				{FromCity: "İstanbul", ToCity: "Bursa", Price: 300, IsSold: true},
				// Short hop kept off sale so long-haul seats stay whole
				{FromCity: "Bursa", ToCity: "Balıkesir", Price: 200, IsSold: false},
			},
		},
		{
			FromCity:      "Ankara",
			ToCity:        "İzmir",
			DepartureTime: depart(8, 30),
			ArrivalTime:   depart(16, 0),
			Price:         700,
			Type:          "STANDARD",
			IsActive:      true,
			BusID:         fleet[2].ID,
			RouteStations: []routes.RouteStation{
				{Station: "Afyonkarahisar", Time: depart(11, 30), Order: 0},
				{Station: "Uşak", Time: depart(13, 0), Order: 1},
			},
		},
	}

	for i := range seedRoutes {
		if err := s.db.PostgreSQL.Create(&seedRoutes[i]).Error; err != nil {
			return fmt.Errorf("failed to seed route %s-%s: %w", seedRoutes[i].FromCity, seedRoutes[i].ToCity, err)
		}
	}

	fmt.Printf("   🛣️  %d routes created\n", len(seedRoutes))
	return nil
}
