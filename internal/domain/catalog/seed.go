package catalog

import "github.com/emedico/backend/internal/domain/shared/valueobject"

// SeedMedicines returns the fixed storefront catalog in list order.
// Each call returns a fresh slice.
func SeedMedicines() []Medicine {
	return []Medicine{
		{
			ID:                   "med001",
			Name:                 "Paracetamol 500mg Tablets",
			Brand:                "PainRelief Co.",
			Category:             "Pain Relief",
			Price:                valueobject.MustUSD("5.99"),
			Available:            true,
			PrescriptionRequired: false,
			Description:          "Effective for relieving mild to moderate pain and reducing fever. Pack of 20 tablets.",
			ImageURL:             "https://via.placeholder.com/250x150/007bff/FFFFFF?Text=Paracetamol",
		},
		{
			ID:                   "med002",
			Name:                 "Amoxicillin 250mg Capsules",
			Brand:                "Generic Health",
			Category:             "Antibiotics",
			Price:                valueobject.MustUSD("12.50"),
			Available:            true,
			PrescriptionRequired: true,
			Description:          "Prescription antibiotic used to treat a variety of bacterial infections. Pack of 30 capsules.",
			ImageURL:             "https://via.placeholder.com/250x150/28a745/FFFFFF?Text=Amoxicillin",
		},
		{
			ID:                   "med003",
			Name:                 "Vitamin C 1000mg Effervescent",
			Brand:                "ImmunoBoost",
			Category:             "Vitamins & Supplements",
			Price:                valueobject.MustUSD("8.75"),
			Available:            true,
			PrescriptionRequired: false,
			Description:          "Supports immune system function. Orange flavor. 20 effervescent tablets.",
			ImageURL:             "https://via.placeholder.com/250x150/ffc107/000000?Text=Vitamin+C",
		},
		{
			ID:                   "med004",
			Name:                 "Ibuprofen 200mg Liquid Gels",
			Brand:                "FastAct",
			Category:             "Pain Relief",
			Price:                valueobject.MustUSD("7.20"),
			Available:            false,
			PrescriptionRequired: false,
			Description:          "Rapidly absorbed liquid gels for fast pain relief. 24 count.",
			ImageURL:             "https://via.placeholder.com/250x150/dc3545/FFFFFF?Text=Ibuprofen",
		},
		{
			ID:                   "med005",
			Name:                 "Loratadine 10mg Antihistamine",
			Brand:                "AllergyShield",
			Category:             "Allergy Relief",
			Price:                valueobject.MustUSD("9.99"),
			Available:            true,
			PrescriptionRequired: false,
			Description:          "Non-drowsy allergy relief for hay fever and other upper respiratory allergies. 30 tablets.",
			ImageURL:             "https://via.placeholder.com/250x150/17a2b8/FFFFFF?Text=Loratadine",
		},
	}
}
