package domain

// SampleRecords returns the built-in demo portfolio: a spread of stocks,
// ETFs, bonds, crypto and one non-tradable label, useful for first-run
// exploration before real data is loaded.
func SampleRecords() []RawHolding {
	return []RawHolding{
		{AssetID: "AAPL", Category: "Stocks", Quantity: 10, PurchasePrice: 150, CurrentPrice: 180},
		{AssetID: "MSFT", Category: "Stocks", Quantity: 5, PurchasePrice: 300, CurrentPrice: 350},
		{AssetID: "GOOGL", Category: "Stocks", Quantity: 2, PurchasePrice: 2800, CurrentPrice: 2900},
		{AssetID: "AMZN", Category: "Stocks", Quantity: 3, PurchasePrice: 3300, CurrentPrice: 3400},
		{AssetID: "TSLA", Category: "Stocks", Quantity: 8, PurchasePrice: 800, CurrentPrice: 750},
		{AssetID: "VTI", Category: "ETFs", Quantity: 15, PurchasePrice: 220, CurrentPrice: 240},
		{AssetID: "AGG", Category: "Bonds", Quantity: 20, PurchasePrice: 100, CurrentPrice: 102},
		{AssetID: "BTC-USD", Category: "Crypto", Quantity: 0.5, PurchasePrice: 35000, CurrentPrice: 40000},
		{AssetID: "ETH-USD", Category: "Crypto", Quantity: 2, PurchasePrice: 2500, CurrentPrice: 3000},
		{AssetID: "Real Estate", Category: "Real Estate", Quantity: 1, PurchasePrice: 200000, CurrentPrice: 210000},
	}
}

// TemplateRecords returns the two-row import template offered for CSV
// round-tripping.
func TemplateRecords() []RawHolding {
	return []RawHolding{
		{AssetID: "AAPL", Category: "Stocks", Quantity: 10, PurchasePrice: 150, CurrentPrice: 180},
		{AssetID: "VTI", Category: "ETFs", Quantity: 5, PurchasePrice: 200, CurrentPrice: 220},
	}
}
