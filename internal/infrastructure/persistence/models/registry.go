package models

// All returns every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CategoryModel{},
		&ProductModel{},
		&CustomerModel{},
		&DealModel{},
		&TransactionModel{},
		&DealUsageModel{},
		&CartItemModel{},
	}
}
