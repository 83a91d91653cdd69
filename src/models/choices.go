package models

type AccountType string

const (
	AccountChecking          AccountType = "CHECKING_ACCOUNT"
	AccountSavings           AccountType = "SAVINGS_ACCOUNT"
	AccountInstallmentSaving AccountType = "INSTALLMENT_SAVING"
	AccountTimeDeposit       AccountType = "TIME_DEPOSIT"
	AccountCreditCard        AccountType = "CREDIT_CARD"
	AccountStock             AccountType = "STOCK"
)

func AllAccountTypes() []AccountType {
	return []AccountType{
		AccountChecking, AccountSavings, AccountInstallmentSaving,
		AccountTimeDeposit, AccountCreditCard, AccountStock,
	}
}

func (t AccountType) Valid() bool {
	for _, v := range AllAccountTypes() {
		if v == t {
			return true
		}
	}
	return false
}

type Currency string

const (
	KRW Currency = "KRW"
	USD Currency = "USD"
)

// AllCurrencies is ordered; summaries iterate currencies in this order.
func AllCurrencies() []Currency {
	return []Currency{KRW, USD}
}

func (c Currency) Valid() bool {
	return c == KRW || c == USD
}

type TransactionCategory string

const (
	CategoryService        TransactionCategory = "SERVICE"
	CategoryDailyNecessity TransactionCategory = "DAILY_NECESSITY"
	CategoryMembership     TransactionCategory = "MEMBERSHIP"
	CategoryGrocery        TransactionCategory = "GROCERY"
	CategoryEatOut         TransactionCategory = "EAT_OUT"
	CategoryClothing       TransactionCategory = "CLOTHING"
	CategoryPresent        TransactionCategory = "PRESENT"
	CategoryCar            TransactionCategory = "CAR"
	CategoryHousing        TransactionCategory = "HOUSING"
	CategoryLeisure        TransactionCategory = "LEISURE"
	CategoryMedical        TransactionCategory = "MEDICAL"
	CategoryParenting      TransactionCategory = "PARENTING"
	CategoryTransfer       TransactionCategory = "TRANSFER"
	CategoryInterest       TransactionCategory = "INTEREST"
	CategoryIncome         TransactionCategory = "INCOME"
	CategoryEtc            TransactionCategory = "ETC"
)

func AllTransactionCategories() []TransactionCategory {
	return []TransactionCategory{
		CategoryService, CategoryDailyNecessity, CategoryMembership, CategoryGrocery,
		CategoryEatOut, CategoryClothing, CategoryPresent, CategoryCar, CategoryHousing,
		CategoryLeisure, CategoryMedical, CategoryParenting, CategoryTransfer,
		CategoryInterest, CategoryIncome, CategoryEtc,
	}
}

func (c TransactionCategory) Valid() bool {
	for _, v := range AllTransactionCategories() {
		if v == c {
			return true
		}
	}
	return false
}

// RequiresDetail reports whether transactions of this category are expected
// to be itemized.
func (c TransactionCategory) RequiresDetail() bool {
	return c == CategoryDailyNecessity || c == CategoryGrocery
}

type RetailerType string

const (
	RetailerEtc     RetailerType = "ETC"
	RetailerStore   RetailerType = "STORE"
	RetailerPerson  RetailerType = "PERSON"
	RetailerBank    RetailerType = "BANK"
	RetailerService RetailerType = "SERVICE"
)

func (t RetailerType) Valid() bool {
	switch t {
	case RetailerEtc, RetailerStore, RetailerPerson, RetailerBank, RetailerService:
		return true
	}
	return false
}

type DetailItemCategory string

var detailItemCategories = []DetailItemCategory{
	"ETC", "FRUIT", "ALCOHOL", "DRINK", "SAUCE", "MEAT", "VEGETABLE", "DAIRY", "WRAP",
	"SNACK", "NOODLE", "BREAD", "DRUG", "TAX", "SEAFOOD", "INGREDIENT", "APPLIANCE",
	"STATIONERY", "BATH", "BABY", "COOKER", "FOOD", "CLOTHING", "UNK",
}

func AllDetailItemCategories() []DetailItemCategory {
	out := make([]DetailItemCategory, len(detailItemCategories))
	copy(out, detailItemCategories)
	return out
}

func (c DetailItemCategory) Valid() bool {
	for _, v := range detailItemCategories {
		if v == c {
			return true
		}
	}
	return false
}

type ExchangeType string

const (
	ExchangeBank   ExchangeType = "BANK"
	ExchangeBroker ExchangeType = "BROKER"
	ExchangeEtc    ExchangeType = "ETC"
)

func (t ExchangeType) Valid() bool {
	return t == ExchangeBank || t == ExchangeBroker || t == ExchangeEtc
}
