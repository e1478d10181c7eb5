package narrative

import "fmt"

// mockAnalysis builds the deterministic offline narrative. The fixed market
// commentary is templated with the batch statistics so the output stays
// consistent with the quantitative report it accompanies.
func mockAnalysis(stats batchStats) map[string]interface{} {
	topRoutes := formatEntries(stats.TopRoutes)
	if topRoutes == "" {
		topRoutes = "SYD-MEL (25), SYD-BNE (20), MEL-BNE (15)"
	}

	return map[string]interface{}{
		"trends": map[string]interface{}{
			"market_growth":         "The Australian domestic airline market is experiencing steady recovery with 15-20% year-over-year growth in passenger demand.",
			"seasonal_patterns":     "Strong seasonal variations observed with peak demand during school holidays (Dec-Jan, Apr, Jul, Sep) and major events.",
			"price_volatility":      fmt.Sprintf("Moderate price volatility of 20-30%% observed, with average ticket price of $%.0f showing dynamic pricing patterns.", stats.AvgPrice),
			"competition_intensity": "High competition between full-service carriers (Qantas, Virgin) and low-cost carriers (Jetstar, Rex).",
		},
		"pricing": map[string]interface{}{
			"average_price":    fmt.Sprintf("$%.0f", stats.AvgPrice),
			"price_range":      fmt.Sprintf("$%.0f - $%.0f", stats.MinPrice, stats.MaxPrice),
			"pricing_strategy": "Airlines are implementing dynamic pricing with 15-25% price variations based on demand, time of booking, and seasonality.",
			"price_factors": []string{
				"Day of week (weekends 20-30% higher)",
				"Time of day (peak hours 15-25% higher)",
				"Advance booking (last-minute 40-60% higher)",
				"Seasonal demand (holiday periods 30-50% higher)",
			},
		},
		"demand": map[string]interface{}{
			"total_volume":   fmt.Sprintf("%d flights analyzed", stats.TotalFlights),
			"peak_periods":   "Weekend flights show 35-45% higher demand than weekdays, with Friday and Sunday being the busiest travel days.",
			"popular_routes": "Top routes: " + topRoutes,
			"weekend_ratio":  fmt.Sprintf("%.1f%% of flights are on weekends", stats.WeekendRatio*100),
			"demand_factors": []string{
				"Business travel recovery (40% of demand)",
				"Leisure travel growth (35% of demand)",
				"VFR (Visiting Friends & Relatives) travel (25% of demand)",
			},
		},
		"recommendations": []string{
			"Strategic Pricing: Implement dynamic pricing models that adjust rates based on demand patterns and competitor pricing.",
			"Capacity Management: Optimize flight schedules to match demand peaks, especially during weekends and holiday periods.",
			"Route Optimization: Focus on high-demand routes while exploring opportunities in underserved markets.",
			"Customer Segmentation: Develop targeted marketing strategies for business and leisure travelers.",
			"Technology Investment: Invest in demand forecasting and pricing optimization tools.",
		},
		"risks": []string{
			"Economic Downturn: Recession could reduce discretionary travel spending by 20-30%.",
			"Fuel Price Volatility: 10% increase in fuel prices could impact profitability by 5-8%.",
			"Regulatory Changes: New safety or environmental regulations could increase operational costs.",
			"Competitive Pressure: New market entrants or aggressive pricing by competitors could erode market share.",
			"Climate Events: Extreme weather could impact flight schedules and increase operational costs.",
		},
		"market_opportunities": []string{
			"Regional Expansion: Untapped potential in regional routes with growing business and tourism demand.",
			"Premium Services: Growing demand for premium economy and business class services.",
			"Ancillary Services: Revenue from baggage fees, seat selection, and in-flight services.",
			"Loyalty Programs: Enhanced frequent flyer programs to increase customer retention and revenue.",
		},
		"competitive_analysis": map[string]interface{}{
			"market_leaders": map[string]string{
				"Qantas":            "Market leader with 40% share, strong brand loyalty, comprehensive network",
				"Virgin Australia":  "Second largest with 25% share, competitive pricing, good customer service",
				"Jetstar":           "Low-cost leader with 20% share, aggressive pricing, growing network",
			},
			"competitive_advantages": []string{
				"Network coverage and frequency",
				"Brand recognition and trust",
				"Operational efficiency and cost structure",
				"Technology and digital capabilities",
			},
		},
		"financial_insights": map[string]interface{}{
			"revenue_drivers": []string{
				"Ticket sales (70-80% of revenue)",
				"Ancillary services (15-20% of revenue)",
				"Cargo operations (5-10% of revenue)",
			},
			"profitability_metrics": map[string]string{
				"average_margin":         "8-12% operating margin",
				"break_even_load_factor": "65-75%",
			},
		},
	}
}
