package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
)

// EnsureDemoCustomers seeds a handful of sample customers so a fresh
// development database has something to bill. Production never calls this.
func EnsureDemoCustomers(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&customerdomain.Customer{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		demo := []customerdomain.Customer{
			{
				Name:            "Ramesh Kumar",
				Address:         "12 Station Road",
				Phone:           "9800000001",
				PricePerJar:     decimal.NewFromInt(30),
				PricePerCapsule: decimal.NewFromInt(5),
				Type:            customerdomain.CustomerTypeRegular,
				BillDay:         1,
			},
			{
				Name:            "Sita Devi",
				Address:         "4 Gandhi Chowk",
				Phone:           "9800000002",
				PricePerJar:     decimal.NewFromInt(25),
				PricePerCapsule: decimal.NewFromInt(5),
				Type:            customerdomain.CustomerTypeRegular,
				BillDay:         15,
			},
			{
				Name:            "Sharma Caterers",
				Address:         "Market Yard",
				Phone:           "9800000003",
				PricePerJar:     decimal.NewFromInt(35),
				PricePerCapsule: decimal.NewFromInt(10),
				Type:            customerdomain.CustomerTypeEvent,
				BillDay:         28,
			},
		}
		for i := range demo {
			demo[i].ID = node.Generate()
			demo[i].Active = true
			demo[i].AccessToken = demo[i].Phone + "-demo"
			demo[i].CreatedAt = now
			demo[i].UpdatedAt = now
			if err := tx.Create(&demo[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
