package engine

// DefaultParameters returns the built-in five-program parameter table:
// cardiovascular disease prevention, type 2 diabetes prevention, cancer
// screening, Alzheimer's multidomain prevention, and osteoporosis fracture
// prevention, over a 10-year horizon at a 3% discount rate from the societal
// perspective.
//
// Every call returns a fresh value; callers own the result and pass it into
// Load explicitly. Risk-reduction channels are specified as Beta over RRR;
// the lognormal RR channel is derived at load via moment matching.
func DefaultParameters() Parameters {
	return Parameters{
		Simulation: SimulationConfig{
			HorizonYears:     10,
			DiscountRate:     0.03,
			Perspective:      PerspectiveSocietal,
			WillingnessToPay: 150000,
		},
		Adjustments: PortfolioAdjustments{
			OverlapEvents:    0.9782178217821782,
			MortalitySynergy: 1.589256335121348,
			QALYSynergy:      4.865944050520814,
			HCRealization:    2.158984,
			ProdRealization:  0.353716,
			BenefitSynergy:   1.063,
		},
		Interventions: map[string]*InterventionSpec{
			"cvd": {
				Label:                 "Cardiovascular Disease Prevention",
				Population:            500000,
				AnnualEventRate:       0.012,
				CaseFatalityRate:      0.15,
				UtilityWeight:         0.85,
				QALYsLostPerEvent:     0.061764705882353166,
				LifeYearsLostPerDeath: 9.0,
				CostPPYGamma:          GammaParams{Shape: 5.0, Scale: 384.5160616649235},
				EventCostGamma:        GammaParams{Shape: 4.0, Scale: 174610.1514382146},
				ProductivityCostGamma: GammaParams{Shape: 3.0, Scale: 487832.36345171503},
				RRRBeta:               &BetaParams{Alpha: 103.75, Beta: 396.25},
			},
			"diabetes": {
				Label:                 "Type 2 Diabetes Prevention",
				Population:            750000,
				AnnualEventRate:       0.028,
				CaseFatalityRate:      0.05,
				UtilityWeight:         0.82,
				QALYsLostPerEvent:     0.06585365853658531,
				LifeYearsLostPerDeath: 6.0,
				CostPPYGamma:          GammaParams{Shape: 5.0, Scale: 96.91055212693195},
				EventCostGamma:        GammaParams{Shape: 4.0, Scale: 4718.275891686173},
				ProductivityCostGamma: GammaParams{Shape: 3.0, Scale: 13661.137974473053},
				RRRBeta:               &BetaParams{Alpha: 303.57142857142856, Beta: 196.42857142857144},
			},
			"cancer": {
				Label:                 "Cancer Screening (Breast + CRC)",
				Population:            1126000,
				AnnualEventRate:       0.006,
				CaseFatalityRate:      0.2,
				UtilityWeight:         0.84,
				QALYsLostPerEvent:     0.09999999999999964,
				LifeYearsLostPerDeath: 12.0,
				CostPPYGamma:          GammaParams{Shape: 5.0, Scale: 99.9478564306867},
				EventCostGamma:        GammaParams{Shape: 4.0, Scale: 144919.35620687832},
				ProductivityCostGamma: GammaParams{Shape: 3.0, Scale: 352550.4219999648},
				RRRBeta:               &BetaParams{Alpha: 62.3149792776791, Beta: 437.6850207223209},
			},
			"alzheimers": {
				Label:                 "Alzheimer's Multidomain Prevention",
				Population:            30000,
				AnnualEventRate:       0.054,
				CaseFatalityRate:      0.05,
				UtilityWeight:         0.76,
				QALYsLostPerEvent:     1.6736842105263157,
				LifeYearsLostPerDeath: 6.0,
				CostPPYGamma:          GammaParams{Shape: 5.0, Scale: 2266.456461033086},
				EventCostGamma:        GammaParams{Shape: 4.0, Scale: 296448.1195879286},
				ProductivityCostGamma: GammaParams{Shape: 3.0, Scale: 397995.6019110086},
				RRRBeta:               &BetaParams{Alpha: 83.33333333333333, Beta: 416.6666666666667},
			},
			"osteoporosis": {
				Label:                 "Osteoporosis Fracture Prevention",
				Population:            234000,
				AnnualEventRate:       0.05,
				CaseFatalityRate:      0.02,
				UtilityWeight:         0.87,
				QALYsLostPerEvent:     0.3862988505747126,
				LifeYearsLostPerDeath: 0.8,
				CostPPYGamma:          GammaParams{Shape: 5.0, Scale: 140.27581986942178},
				EventCostGamma:        GammaParams{Shape: 4.0, Scale: 35833.005519283826},
				ProductivityCostGamma: GammaParams{Shape: 3.0, Scale: 47818.03284826455},
				RRRBeta:               &BetaParams{Alpha: 45.0, Beta: 455.0},
			},
		},
	}
}
