package domain

import "fmt"

// FieldPopulated reports whether the named fund field carries a value.
// String fields count as populated when non-empty; pointer fields when non-nil.
// Returns an error for a field name the schema does not know, so a
// misconfigured rule fails the run instead of silently skipping.
func (f *Fund) FieldPopulated(field string) (bool, error) {
	switch field {
	case FieldFundID:
		return f.FundID != "", nil
	case FieldFundName:
		return f.FundName != "", nil
	case FieldManagerName:
		return f.ManagerName != "", nil
	case FieldFundType:
		return f.FundType != "", nil
	case FieldStrategy:
		return f.Strategy != "", nil
	case FieldVintageYear:
		return f.VintageYear != nil, nil
	case FieldInceptionDate:
		return f.InceptionDate != nil, nil
	case FieldFundSizeUSDMillions:
		return f.FundSizeUSDMillions != nil, nil
	case FieldOriginalCurrency:
		return f.OriginalCurrency != "", nil
	case FieldTargetSizeUSDMillions:
		return f.TargetSizeUSDMillions != nil, nil
	case FieldStatus:
		return f.Status != "", nil
	case FieldGeography:
		return f.Geography != "", nil
	case FieldSectorFocus:
		return f.SectorFocus != "", nil
	case FieldAdministrator:
		return f.Administrator != nil && *f.Administrator != "", nil
	case FieldLastUpdated:
		return f.LastUpdated != nil, nil
	}
	return false, fmt.Errorf("unknown fund field: %s", field)
}

// NumericFieldValue returns the named numeric fund field, nil when absent.
func (f *Fund) NumericFieldValue(field string) (*float64, error) {
	switch field {
	case FieldFundSizeUSDMillions:
		return f.FundSizeUSDMillions, nil
	case FieldTargetSizeUSDMillions:
		return f.TargetSizeUSDMillions, nil
	case FieldVintageYear:
		if f.VintageYear == nil {
			return nil, nil
		}
		v := float64(*f.VintageYear)
		return &v, nil
	}
	return nil, fmt.Errorf("unknown numeric fund field: %s", field)
}

// CategoricalFieldValue returns the named categorical fund field.
func (f *Fund) CategoricalFieldValue(field string) (string, error) {
	switch field {
	case FieldFundType:
		return f.FundType, nil
	case FieldOriginalCurrency:
		return f.OriginalCurrency, nil
	}
	return "", fmt.Errorf("unknown categorical fund field: %s", field)
}

// NumericFieldValue returns the named numeric performance field, nil when absent.
func (o *PerformanceObservation) NumericFieldValue(field string) (*float64, error) {
	switch field {
	case FieldIRRNetPct:
		return o.IRRNetPct, nil
	case FieldMOIC:
		return o.MOIC, nil
	case FieldDPI:
		return o.DPI, nil
	case FieldRVPI:
		return o.RVPI, nil
	case FieldTVPI:
		return o.TVPI, nil
	case FieldMonthlyReturnPct:
		return o.MonthlyReturnPct, nil
	}
	return nil, fmt.Errorf("unknown numeric performance field: %s", field)
}
