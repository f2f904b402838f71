package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrShopNotFound          = errors.New("shop not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrDistributionNotFound  = errors.New("distribution not found")
	ErrDuplicateDistribution = errors.New("order already has a distribution record")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
