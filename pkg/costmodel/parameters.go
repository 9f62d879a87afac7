package costmodel

// Parameters is the flat record persisted by the preset store and read from
// configuration files. Every field maps onto one of the four input types.
type Parameters struct {
	PurchasePrice       float64 `yaml:"purchasePrice" toml:"purchasePrice" json:"purchasePrice" mapstructure:"purchasePrice"`
	MonthlyRunningCost  float64 `yaml:"monthlyRunningCost" toml:"monthlyRunningCost" json:"monthlyRunningCost" mapstructure:"monthlyRunningCost"`
	FuelConsumption     float64 `yaml:"fuelConsumption" toml:"fuelConsumption" json:"fuelConsumption" mapstructure:"fuelConsumption"`
	InterestRate        float64 `yaml:"interestRate" toml:"interestRate" json:"interestRate" mapstructure:"interestRate"`
	FinancingYears      int     `yaml:"financingYears" toml:"financingYears" json:"financingYears" mapstructure:"financingYears"`
	BalloonPayment      float64 `yaml:"balloonPayment" toml:"balloonPayment" json:"balloonPayment" mapstructure:"balloonPayment"`
	InsuranceAnnualCost float64 `yaml:"insuranceAnnualCost" toml:"insuranceAnnualCost" json:"insuranceAnnualCost" mapstructure:"insuranceAnnualCost"`
	KmPerYear           float64 `yaml:"kmPerYear" toml:"kmPerYear" json:"kmPerYear" mapstructure:"kmPerYear"`
	FuelPrice           float64 `yaml:"fuelPrice" toml:"fuelPrice" json:"fuelPrice" mapstructure:"fuelPrice"`
	LifetimeYears       int     `yaml:"lifetimeYears" toml:"lifetimeYears" json:"lifetimeYears" mapstructure:"lifetimeYears"`
	InflationPercent    float64 `yaml:"inflationPercent" toml:"inflationPercent" json:"inflationPercent" mapstructure:"inflationPercent"`
}

// Vehicle extracts the vehicle part of the record.
func (p Parameters) Vehicle() Vehicle {
	return Vehicle{
		PurchasePrice:           p.PurchasePrice,
		MonthlyRunningCost:      p.MonthlyRunningCost,
		FuelConsumptionPer100km: p.FuelConsumption,
	}
}

// FinancingPlan extracts the financing part of the record.
func (p Parameters) FinancingPlan() FinancingPlan {
	return FinancingPlan{
		AnnualInterestRatePercent: p.InterestRate,
		DurationYears:             p.FinancingYears,
		BalloonPayment:            p.BalloonPayment,
	}
}

// InsurancePolicy extracts the insurance part of the record.
func (p Parameters) InsurancePolicy() InsurancePolicy {
	return InsurancePolicy{AnnualCost: p.InsuranceAnnualCost}
}

// UsageProfile extracts the usage part of the record.
func (p Parameters) UsageProfile() UsageProfile {
	return UsageProfile{
		KmPerYear:                     p.KmPerYear,
		FuelPricePerLiter:             p.FuelPrice,
		LifetimeYears:                 p.LifetimeYears,
		OperatingCostInflationPercent: p.InflationPercent,
	}
}

// Validate checks every field, reporting the first invalid one.
func (p Parameters) Validate() error {
	_, _, _, _, err := p.Inputs()
	return err
}

// Inputs splits the record into the four validated input types.
func (p Parameters) Inputs() (Vehicle, FinancingPlan, InsurancePolicy, UsageProfile, error) {
	v, f, i, u := p.Vehicle(), p.FinancingPlan(), p.InsurancePolicy(), p.UsageProfile()
	if err := ValidateInputs(v, f, i, u); err != nil {
		return Vehicle{}, FinancingPlan{}, InsurancePolicy{}, UsageProfile{}, err
	}
	return v, f, i, u, nil
}

// FromInputs flattens the four input types back into a persistable record.
func FromInputs(v Vehicle, f FinancingPlan, i InsurancePolicy, u UsageProfile) Parameters {
	return Parameters{
		PurchasePrice:       v.PurchasePrice,
		MonthlyRunningCost:  v.MonthlyRunningCost,
		FuelConsumption:     v.FuelConsumptionPer100km,
		InterestRate:        f.AnnualInterestRatePercent,
		FinancingYears:      f.DurationYears,
		BalloonPayment:      f.BalloonPayment,
		InsuranceAnnualCost: i.AnnualCost,
		KmPerYear:           u.KmPerYear,
		FuelPrice:           u.FuelPricePerLiter,
		LifetimeYears:       u.LifetimeYears,
		InflationPercent:    u.OperatingCostInflationPercent,
	}
}

// ValidateInputs validates the four input types in field order.
func ValidateInputs(v Vehicle, f FinancingPlan, i InsurancePolicy, u UsageProfile) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if err := i.Validate(); err != nil {
		return err
	}
	return u.Validate()
}
