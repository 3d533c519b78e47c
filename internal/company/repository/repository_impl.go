package repository

import (
	"github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) repository.Repository[domain.Company] {
	return repository.ProvideStore[domain.Company](db)
}
