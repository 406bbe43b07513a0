package domain

// PortfolioCompany is one entry in an investor's portfolio.
type PortfolioCompany struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

// Profile holds the extended, role-specific fields of an account. At most one
// exists per user; it is created lazily on the first profile write.
type Profile struct {
	ID                  int64              `json:"id" gorm:"primaryKey"`
	UserID              int64              `json:"userId" gorm:"uniqueIndex;not null"`
	Company             string             `json:"company,omitempty" gorm:"size:255"`
	Title               string             `json:"title,omitempty" gorm:"size:255"`
	Industry            string             `json:"industry,omitempty" gorm:"size:255"`
	Stage               string             `json:"stage,omitempty" gorm:"size:100"`
	Founded             int                `json:"founded,omitempty"`
	Employees           int                `json:"employees,omitempty"`
	FundingAmount       int                `json:"fundingAmount,omitempty"`
	FundingUse          string             `json:"fundingUse,omitempty"`
	EquityOffered       int                `json:"equityOffered,omitempty"`
	Website             string             `json:"website,omitempty" gorm:"size:512"`
	Linkedin            string             `json:"linkedin,omitempty" gorm:"size:512"`
	Skills              []string           `json:"skills,omitempty" gorm:"serializer:json"`
	PortfolioCompanies  []PortfolioCompany `json:"portfolioCompanies,omitempty" gorm:"serializer:json"`
	InvestmentInterests []string           `json:"investmentInterests,omitempty" gorm:"serializer:json"`
}

// ProfilePatch is a shallow merge applied to a Profile. Nil fields are left
// untouched; non-nil fields replace the stored value wholesale (slices are
// replaced, not appended).
type ProfilePatch struct {
	Company             *string             `json:"company"`
	Title               *string             `json:"title"`
	Industry            *string             `json:"industry"`
	Stage               *string             `json:"stage"`
	Founded             *int                `json:"founded"`
	Employees           *int                `json:"employees"`
	FundingAmount       *int                `json:"fundingAmount"`
	FundingUse          *string             `json:"fundingUse"`
	EquityOffered       *int                `json:"equityOffered"`
	Website             *string             `json:"website"`
	Linkedin            *string             `json:"linkedin"`
	Skills              *[]string           `json:"skills"`
	PortfolioCompanies  *[]PortfolioCompany `json:"portfolioCompanies"`
	InvestmentInterests *[]string           `json:"investmentInterests"`
}

// Apply merges the patch into p, field by field.
func (patch ProfilePatch) Apply(p *Profile) {
	if patch.Company != nil {
		p.Company = *patch.Company
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Industry != nil {
		p.Industry = *patch.Industry
	}
	if patch.Stage != nil {
		p.Stage = *patch.Stage
	}
	if patch.Founded != nil {
		p.Founded = *patch.Founded
	}
	if patch.Employees != nil {
		p.Employees = *patch.Employees
	}
	if patch.FundingAmount != nil {
		p.FundingAmount = *patch.FundingAmount
	}
	if patch.FundingUse != nil {
		p.FundingUse = *patch.FundingUse
	}
	if patch.EquityOffered != nil {
		p.EquityOffered = *patch.EquityOffered
	}
	if patch.Website != nil {
		p.Website = *patch.Website
	}
	if patch.Linkedin != nil {
		p.Linkedin = *patch.Linkedin
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
	if patch.PortfolioCompanies != nil {
		p.PortfolioCompanies = *patch.PortfolioCompanies
	}
	if patch.InvestmentInterests != nil {
		p.InvestmentInterests = *patch.InvestmentInterests
	}
}
