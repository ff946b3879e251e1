package domain

// AdditionalProperties is the optional bag of physical measurements mined
// from upstream free-text sections. Values keep their upstream rendering
// (unit suffixes included) because the source offers no guaranteed schema.
type AdditionalProperties struct {
	BoilingPoint    string `bson:"boilingPoint,omitempty" json:"boilingPoint,omitempty"`
	MeltingPoint    string `bson:"meltingPoint,omitempty" json:"meltingPoint,omitempty"`
	FlashPoint      string `bson:"flashPoint,omitempty" json:"flashPoint,omitempty"`
	Density         string `bson:"density,omitempty" json:"density,omitempty"`
	VaporPressure   string `bson:"vaporPressure,omitempty" json:"vaporPressure,omitempty"`
	VaporDensity    string `bson:"vaporDensity,omitempty" json:"vaporDensity,omitempty"`
	RefractiveIndex string `bson:"refractiveIndex,omitempty" json:"refractiveIndex,omitempty"`
	UNNumber        string `bson:"unNumber,omitempty" json:"unNumber,omitempty"`
	PhysicalState   string `bson:"physicalState,omitempty" json:"physicalState,omitempty"`
}

// HazardClassification holds GHS labelling data. Absence of the upstream
// classification section leaves the whole struct zero-valued.
type HazardClassification struct {
	SignalWord              string   `bson:"signalWord,omitempty" json:"signalWord,omitempty"`
	HazardStatements        []string `bson:"hazardStatements,omitempty" json:"hazardStatements,omitempty"`
	PrecautionaryStatements []string `bson:"precautionaryStatements,omitempty" json:"precautionaryStatements,omitempty"`
}

// ChemicalProperties is the chemical-identity sub-record of a ticket.
type ChemicalProperties struct {
	CASNumber            string               `bson:"casNumber,omitempty" json:"casNumber,omitempty"`
	MolecularFormula     string               `bson:"molecularFormula,omitempty" json:"molecularFormula,omitempty"`
	MolecularWeight      string               `bson:"molecularWeight,omitempty" json:"molecularWeight,omitempty"`
	IUPACName            string               `bson:"iupacName,omitempty" json:"iupacName,omitempty"`
	CanonicalSMILES      string               `bson:"canonicalSmiles,omitempty" json:"canonicalSmiles,omitempty"`
	IsomericSMILES       string               `bson:"isomericSmiles,omitempty" json:"isomericSmiles,omitempty"`
	InChI                string               `bson:"inchi,omitempty" json:"inchi,omitempty"`
	InChIKey             string               `bson:"inchiKey,omitempty" json:"inchiKey,omitempty"`
	Synonyms             []string             `bson:"synonyms,omitempty" json:"synonyms,omitempty"`
	Hazards              HazardClassification `bson:"hazards,omitempty" json:"hazards,omitempty"`
	AdditionalProperties AdditionalProperties `bson:"additionalProperties,omitempty" json:"additionalProperties,omitempty"`
	AutoPopulated        bool                 `bson:"autoPopulated" json:"autoPopulated"`
	EnrichmentError      string               `bson:"enrichmentError,omitempty" json:"enrichmentError,omitempty"`
}
