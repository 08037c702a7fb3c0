package knowledge

// Starter content written by Initialize when knowledge.seed is on and the
// concepts table is empty. Company figures are a snapshot; live numbers come
// from market data.

type seedConcept struct {
	Name        string
	Aliases     string
	Definition  string
	KeyTakeaway string
	Difficulty  string
	Category    string
}

type seedCompany struct {
	Ticker        string
	Name          string
	Sector        string
	Industry      string
	MarketCap     float64
	PERatio       float64
	DividendYield float64
}

type seedSector struct {
	Name        string
	Description string
	ETF         string
	ETFName     string
}

var seedConcepts = []seedConcept{
	{"P/E Ratio", "pe ratio, price to earnings, price-to-earnings, p/e",
		"The share price divided by earnings per share; what investors pay for each dollar of profit.",
		"A high P/E can signal growth expectations, a low one undervaluation or trouble.",
		"beginner", "valuation"},
	{"EPS", "earnings per share",
		"Net income divided by shares outstanding.",
		"EPS growth over time matters more than a single quarter.",
		"beginner", "valuation"},
	{"Market Cap", "market capitalization, market value, large cap, small cap",
		"Share price multiplied by shares outstanding; the market value of a company.",
		"Larger companies tend to be more stable, smaller ones can grow faster.",
		"beginner", "valuation"},
	{"Dividend", "dividends, payout",
		"A share of profits paid to shareholders, usually quarterly.",
		"Dividends give income, but growth companies often reinvest instead.",
		"beginner", "income"},
	{"Dividend Yield", "yield",
		"Annual dividends per share divided by the share price.",
		"A very high yield can mean the market doubts the dividend will last.",
		"intermediate", "income"},
	{"ETF", "exchange traded fund, exchange-traded fund, etfs",
		"A fund holding a basket of securities that trades on an exchange like a stock.",
		"ETFs give cheap diversification in a single trade.",
		"beginner", "funds"},
	{"Index Fund", "index funds, passive investing, s&p 500 fund",
		"A fund that tracks a market index instead of picking securities.",
		"Low fees and broad exposure make index funds hard to beat over time.",
		"beginner", "funds"},
	{"Expense Ratio", "fund fees, management fee",
		"The yearly fee a fund charges, as a percentage of assets.",
		"Small fee differences compound into large amounts over decades.",
		"beginner", "funds"},
	{"Diversification", "diversify, spreading risk",
		"Spreading money across assets so no single loss dominates.",
		"Diversification reduces risk without necessarily reducing returns.",
		"beginner", "risk"},
	{"Asset Allocation", "allocation, portfolio mix, stocks and bonds mix",
		"How a portfolio is divided among stocks, bonds, cash and other assets.",
		"Allocation drives most of a portfolio's long-run behavior.",
		"intermediate", "risk"},
	{"Volatility", "standard deviation, price swings, beta",
		"How much and how quickly a price moves up and down.",
		"Higher volatility means a wider range of possible outcomes.",
		"intermediate", "risk"},
	{"Compound Interest", "compounding, compound growth",
		"Earning returns on previous returns as well as on the original amount.",
		"Time in the market is the biggest lever compounding has.",
		"beginner", "fundamentals"},
	{"Dollar-Cost Averaging", "dca, dollar cost averaging, regular investing",
		"Investing a fixed amount on a schedule regardless of price.",
		"It removes timing decisions and buys more shares when prices are low.",
		"beginner", "strategy"},
	{"Bonds", "bond, fixed income, treasury",
		"Loans to a government or company that pay interest and return principal at maturity.",
		"Bond prices fall when interest rates rise.",
		"beginner", "fundamentals"},
	{"Stocks", "stock, shares, equity, equities",
		"Ownership stakes in a company.",
		"Stocks have the highest long-run returns of the major asset classes, with the biggest swings.",
		"beginner", "fundamentals"},
	{"Bear Market", "bear, downturn",
		"A decline of 20% or more from a recent high.",
		"Bear markets are normal and have always been followed by recoveries in broad indices.",
		"beginner", "markets"},
	{"Bull Market", "bull, rally",
		"A sustained rise of 20% or more from a recent low.",
		"Bull markets usually last longer than bear markets.",
		"beginner", "markets"},
}

// concept -> related concepts
var seedRelations = map[string][]string{
	"P/E Ratio":             {"EPS", "Market Cap"},
	"EPS":                   {"P/E Ratio"},
	"Market Cap":            {"P/E Ratio", "Stocks"},
	"Dividend":              {"Dividend Yield", "Stocks"},
	"Dividend Yield":        {"Dividend", "P/E Ratio"},
	"ETF":                   {"Index Fund", "Expense Ratio", "Diversification"},
	"Index Fund":            {"ETF", "Expense Ratio"},
	"Expense Ratio":         {"ETF", "Index Fund"},
	"Diversification":       {"Asset Allocation", "ETF", "Volatility"},
	"Asset Allocation":      {"Diversification", "Bonds", "Stocks"},
	"Volatility":            {"Diversification", "Bear Market"},
	"Compound Interest":     {"Dollar-Cost Averaging", "Dividend"},
	"Dollar-Cost Averaging": {"Compound Interest", "Volatility"},
	"Bonds":                 {"Asset Allocation", "Stocks"},
	"Stocks":                {"Bonds", "Market Cap"},
	"Bear Market":           {"Bull Market", "Volatility"},
	"Bull Market":           {"Bear Market"},
}

var seedSectors = []seedSector{
	{"Technology", "Software, hardware, semiconductors and IT services.", "XLK", "Technology Select Sector SPDR Fund"},
	{"Healthcare", "Pharmaceuticals, biotech, medical devices and insurers.", "XLV", "Health Care Select Sector SPDR Fund"},
	{"Financials", "Banks, insurers, asset managers and payment networks.", "XLF", "Financial Select Sector SPDR Fund"},
	{"Consumer Discretionary", "Retail, autos, travel and other non-essential spending.", "XLY", "Consumer Discretionary Select Sector SPDR Fund"},
	{"Consumer Staples", "Food, beverages, household goods and other essentials.", "XLP", "Consumer Staples Select Sector SPDR Fund"},
	{"Energy", "Oil and gas producers, refiners and equipment makers.", "XLE", "Energy Select Sector SPDR Fund"},
	{"Utilities", "Electric, gas and water utilities.", "XLU", "Utilities Select Sector SPDR Fund"},
	{"Real Estate", "REITs and real estate developers and managers.", "XLRE", "Real Estate Select Sector SPDR Fund"},
	{"Materials", "Chemicals, metals, mining and packaging.", "XLB", "Materials Select Sector SPDR Fund"},
	{"Industrials", "Aerospace, machinery, transport and construction.", "XLI", "Industrial Select Sector SPDR Fund"},
	{"Communication Services", "Telecom, media, entertainment and interactive platforms.", "XLC", "Communication Services Select Sector SPDR Fund"},
}

var seedCompanies = []seedCompany{
	{"AAPL", "Apple Inc.", "Technology", "Consumer Electronics", 3.0e12, 29.5, 0.5},
	{"MSFT", "Microsoft Corporation", "Technology", "Software - Infrastructure", 3.1e12, 35.2, 0.7},
	{"NVDA", "NVIDIA Corporation", "Technology", "Semiconductors", 2.9e12, 55.0, 0.03},
	{"GOOGL", "Alphabet Inc.", "Communication Services", "Internet Content & Information", 2.1e12, 24.1, 0.5},
	{"META", "Meta Platforms, Inc.", "Communication Services", "Internet Content & Information", 1.3e12, 26.3, 0.4},
	{"AMZN", "Amazon.com, Inc.", "Consumer Discretionary", "Internet Retail", 1.9e12, 42.8, 0},
	{"TSLA", "Tesla, Inc.", "Consumer Discretionary", "Auto Manufacturers", 0.8e12, 65.4, 0},
	{"JPM", "JPMorgan Chase & Co.", "Financials", "Banks - Diversified", 0.6e12, 12.1, 2.2},
	{"V", "Visa Inc.", "Financials", "Credit Services", 0.55e12, 30.2, 0.8},
	{"BRK-B", "Berkshire Hathaway Inc.", "Financials", "Insurance - Diversified", 0.9e12, 9.8, 0},
	{"JNJ", "Johnson & Johnson", "Healthcare", "Drug Manufacturers - General", 0.38e12, 15.4, 3.1},
	{"UNH", "UnitedHealth Group Incorporated", "Healthcare", "Healthcare Plans", 0.45e12, 20.3, 1.5},
	{"XOM", "Exxon Mobil Corporation", "Energy", "Oil & Gas Integrated", 0.47e12, 13.6, 3.4},
	{"PG", "The Procter & Gamble Company", "Consumer Staples", "Household & Personal Products", 0.39e12, 26.0, 2.4},
	{"KO", "The Coca-Cola Company", "Consumer Staples", "Beverages - Non-Alcoholic", 0.27e12, 25.1, 3.0},
}
