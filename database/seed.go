package database

import (
	"errors"

	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultSeedPassword is the password of every seeded account.
const DefaultSeedPassword = "password123"

var seedUsers = []struct {
	Email string
	Role  string
}{
	{"developer@restaurant.com", models.RoleDeveloper},
	{"admin@restaurant.com", models.RoleAdmin},
	{"staff@restaurant.com", models.RoleStaff},
}

var seedCapacities = []int{2, 2, 2, 2, 4, 4, 4, 6, 6, 6}

// Seed inserts the default accounts, ten joinable tables and the settings
// row. Rows that already exist are left alone, so Seed can be rerun.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultSeedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		for _, u := range seedUsers {
			user := models.User{Email: u.Email, Password: string(hashed), Role: u.Role}
			res := tx.Where(models.User{Email: u.Email}).FirstOrCreate(&user)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				utils.InfoLogger.Printf("Seeded user %s (role=%s)", u.Email, u.Role)
			}
		}

		for i, capacity := range seedCapacities {
			table := models.Table{
				TableNumber: i + 1,
				Capacity:    capacity,
				Status:      models.TableStatusFree,
				IsJoinable:  true,
			}
			res := tx.Where(models.Table{TableNumber: table.TableNumber}).FirstOrCreate(&table)
			if res.Error != nil {
				return res.Error
			}
		}
		utils.InfoLogger.Printf("Seeded %d tables", len(seedCapacities))

		var settings models.Settings
		err = tx.Order("id ASC").Take(&settings).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = models.DefaultSettings()
			return tx.Create(&settings).Error
		}
		return err
	})
}
