package scraper

// DefaultSites lists the UK merchants the live search path queries. Delivery
// notes reflect each merchant's standing offer and surface on extracted
// records when the page itself says nothing.
func DefaultSites() []Site {
	return []Site{
		{Name: "Insulation4Less", BaseURL: "https://www.insulation4less.co.uk", Delivery: "Free delivery over £300"},
		{Name: "Trade Insulations", BaseURL: "https://tradeinsulations.co.uk", Delivery: "Nationwide delivery"},
		{Name: "Insulation Shop", BaseURL: "https://www.insulationshop.co", Delivery: "Next day delivery available"},
		{Name: "Insulation UK", BaseURL: "https://www.insulationuk.co.uk", Delivery: "Nationwide delivery"},
		{Name: "Building Materials Nationwide", BaseURL: "https://www.buildingmaterials.co.uk", Delivery: "Nationwide delivery"},
		{Name: "Materials Market", BaseURL: "https://www.materialsmarket.com", Delivery: "Free delivery over £300"},
		{Name: "Wickes", BaseURL: "https://www.wickes.co.uk", Delivery: "Free delivery over £75"},
		{Name: "B&Q", BaseURL: "https://www.diy.com", Delivery: "Click and collect"},
		{Name: "Buildbase", BaseURL: "https://www.buildbase.co.uk", Delivery: "Branch collection or delivery"},
		{Name: "Screwfix", BaseURL: "https://www.screwfix.com", Delivery: "Next day delivery available"},
		{Name: "Travis Perkins", BaseURL: "https://www.travisperkins.co.uk", Delivery: "Branch collection or delivery"},
	}
}
