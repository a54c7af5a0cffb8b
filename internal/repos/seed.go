package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"medicatalog/internal/domain"
)

// Demo catalog ids, stable so links and tests can refer to them.
const (
	SeedYH680      = "0b6c1f5e-3c1a-4e0e-9a51-6f1d2c3a4b01"
	SeedYH560      = "1d2e3f40-5a6b-4c7d-8e9f-0a1b2c3d4e02"
	SeedAirFitF20  = "2a3b4c5d-6e7f-4a8b-9c0d-1e2f3a4b5c03"
	SeedAirFitN20  = "3b4c5d6e-7f8a-4b9c-8d1e-2f3a4b5c6d04"
	SeedFilterYH   = "4c5d6e7f-8a9b-4c0d-9e2f-3a4b5c6d7e05"
	SeedOxygen8F5  = "5d6e7f8a-9b0c-4d1e-8f3a-4b5c6d7e8f06"
	SeedNebulizer  = "6e7f8a9b-0c1d-4e2f-9a4b-5c6d7e8f9a07"
	SeedMaskBMC    = "7f8a9b0c-1d2e-4f3a-8b5c-6d7e8f9a0b08"
	SeedMaskYuwell = "8a9b0c1d-2e3f-4a4b-9c6d-7e8f9a0b1c09"
)

// SeedProducts is the demo catalog inserted into an empty database.
func SeedProducts() []domain.Product {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }
	img := func(url, alt string) []domain.Media {
		return []domain.Media{{URL: url, Type: domain.MediaImage, Alt: alt}}
	}

	return []domain.Product{
		{
			ID: SeedYH680, Name: "YH-680", Brand: "YUWELL", Type: "Auto-pilotée", Category: "CPAP/PPC",
			Description: "PPC auto-pilotée silencieuse avec humidificateur chauffant intégré.",
			Features:    domain.NewFeatureList("Pression 4-20 cmH2O", "Écran LCD", "Humidificateur chauffant", "Carte SD"),
			Stock:       domain.InStock,
			Media: []domain.Media{
				{URL: "/media/cpap/yh-680/main.jpg", Type: domain.MediaImage, Alt: "YH-680 vue principale"},
				{URL: "/media/cpap/yh-680/side.jpg", Type: domain.MediaImage},
				{URL: "/media/cpap/yh-680/demo.mp4", Type: domain.MediaVideo, Alt: "Démonstration"},
			},
			Translations: []domain.ProductTranslation{
				{Language: domain.LangEN, Name: "YH-680 Auto CPAP",
					Description: "Quiet auto-adjusting CPAP with a built-in heated humidifier.",
					Features:    domain.NewFeatureList("Pressure 4-20 cmH2O", "LCD screen", "Heated humidifier", "SD card")},
				{Language: domain.LangAR, Description: "جهاز ضغط هوائي تلقائي هادئ مع مرطب مدمج."},
			},
			CreatedAt: at(0),
		},
		{
			ID: SeedYH560, Name: "YH-560", Brand: "YUWELL", Type: "Fixe", Category: "CPAP/PPC",
			Description: "PPC à pression fixe, compacte et légère.",
			Features:    domain.NewFeatureList("Pression 4-20 cmH2O", "Rampe de confort"),
			Stock:       domain.LowStock,
			Media:       img("/media/cpap/yh-560/main.jpg", ""),
			CreatedAt:   at(1),
		},
		{
			ID: SeedAirFitF20, Name: "AirFit F20", Brand: "ResMed", Type: "Masque Facial", Category: "MASQUE",
			Description: "Masque facial avec coussin InfinitySeal pour une étanchéité stable.",
			Features: domain.NewFeatureMap(
				domain.FeaturePair{Key: "Tailles", Value: "S, M, L"},
				domain.FeaturePair{Key: "Coussin", Value: "InfinitySeal"},
				domain.FeaturePair{Key: "Poids", Value: "96 g"},
			),
			Stock: domain.InStock,
			Media: img("/media/masques/airfit-f20/main.jpg", "AirFit F20"),
			Translations: []domain.ProductTranslation{
				{Language: domain.LangEN, Name: "AirFit F20 full face mask",
					Description: "Full face mask with InfinitySeal cushion."},
			},
			CreatedAt: at(2),
		},
		{
			ID: SeedAirFitN20, Name: "AirFit N20", Brand: "ResMed", Type: "Masque Nasal", Category: "MASQUE",
			Description: "Masque nasal léger, harnais magnétique.",
			Features:    domain.NewFeatureList("Clips magnétiques", "Coussin InfinitySeal"),
			Stock:       domain.PreOrder,
			Media:       img("/media/masques/airfit-n20/main.jpg", ""),
			CreatedAt:   at(3),
		},
		{
			ID: SeedFilterYH, Name: "Filtre YH", Brand: "YUWELL", Type: "Accessoire", Category: "CPAP/PPC",
			SubCategory: "FILTRE",
			Description: "Lot de filtres de rechange pour la gamme YH.",
			Features:    domain.NewFeatureList("Lot de 6"),
			Stock:       domain.ComingSoon,
			CreatedAt:   at(4),
		},
		{
			ID: SeedOxygen8F5, Name: "Concentrateur d'oxygène 8F-5", Brand: "YUWELL", Type: "Concentrateur",
			Category:    "OXYGENOTHERAPIE",
			Description: "Concentrateur fixe 5 L/min, pureté jusqu'à 93 %.",
			Features: domain.NewFeatureMap(
				domain.FeaturePair{Key: "Débit", Value: "0.5-5 L/min"},
				domain.FeaturePair{Key: "Pureté", Value: "93 % ± 3 %"},
				domain.FeaturePair{Key: "Niveau sonore", Value: "≤ 45 dB"},
			),
			Stock: domain.InStock,
			Media: img("/media/oxygene/8f-5/main.jpg", ""),
			Translations: []domain.ProductTranslation{
				{Language: domain.LangEN, Name: "8F-5 oxygen concentrator",
					Description: "Stationary concentrator, 5 L/min, up to 93% purity."},
				{Language: domain.LangAR, Name: "مكثف الأكسجين 8F-5",
					Description: "مكثف أكسجين ثابت بتدفق 5 لتر في الدقيقة."},
			},
			CreatedAt: at(5),
		},
		{
			ID: SeedNebulizer, Name: "Nébuliseur à piston 403M", Brand: "YUWELL", Type: "Nébuliseur",
			Category:    "AEROSOLTHERAPIE",
			Description: "Nébuliseur à compresseur pour un usage familial.",
			Features:    domain.NewFeatureList("Particules < 5 µm", "Kit adulte et enfant"),
			Stock:       domain.OutOfStock,
			Media:       img("/media/aerosol/403m/main.jpg", ""),
			CreatedAt:   at(6),
		},
		{
			ID: SeedMaskBMC, Name: "Masque nasal", Brand: "BMC", Type: "Masque Nasal", Category: "MASQUE",
			Description: "Masque nasal d'entrée de gamme.",
			Stock:       domain.InStock,
			CreatedAt:   at(7),
		},
		{
			ID: SeedMaskYuwell, Name: "Masque Nasal", Brand: "YUWELL", Type: "Masque Nasal", Category: "MASQUE",
			Description: "Masque nasal avec coussin gel.",
			Stock:       domain.InStock,
			CreatedAt:   at(8),
		},
	}
}

// seedUsers ensures one account per role exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-client", "client@medicatalog.test", "Client", domain.RoleUser, "Passw0rd!"),
		mk("u-employe", "employe@medicatalog.test", "Employé", domain.RoleEmployee, "Passw0rd!"),
		mk("u-admin", "admin@medicatalog.test", "Admin", domain.RoleAdmin, "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	now := stamp(time.Now())
	for _, x := range users {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO users(id,email,name,password_hash,role,created_at)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`), x.ID, x.Email, x.Name, x.Hash, x.Role, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}
