package openbb

// DefaultRoutes are the OpenBB Platform routes a Client serves unless WithRoutes is used.
var DefaultRoutes = []string{
	"equity/search",
	"equity/profile",
	"equity/screener",
	"equity/price/quote",
	"equity/price/historical",
	"equity/price/performance",
	"equity/fundamental/balance",
	"equity/fundamental/income",
	"equity/fundamental/cash",
	"equity/fundamental/metrics",
	"equity/fundamental/ratios",
	"equity/fundamental/dividends",
	"equity/fundamental/filings",
	"equity/fundamental/management",
	"equity/estimates/consensus",
	"equity/estimates/price_target",
	"equity/ownership/insider_trading",
	"equity/ownership/institutional",
	"equity/calendar/earnings",
	"equity/compare/peers",
	"news/company",
	"news/world",
	"economy/calendar",
	"economy/cpi",
	"index/price/historical",
	"etf/search",
	"etf/holdings",
	"crypto/price/historical",
	"currency/price/historical",
}
