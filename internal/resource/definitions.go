package resource

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/lifeshield/lifeshield-api/internal/database"
	"github.com/lifeshield/lifeshield-api/internal/validate"
)

// Management covers insurance applications handled by the back office.
// Writes are token-protected; PUT re-validates the full record.
func Management() Definition {
	return Definition{
		Name:       "application",
		Title:      "Application",
		Plural:     "applications",
		BasePath:   "/management",
		Collection: database.CollManagement,
		Rules: validate.Rules{
			Required: []string{
				"name", "dob", "nid", "phone", "email", "insuranceType",
				"coverage", "paymentTerm", "nomineeName", "nomineeRelation", "nomineeNid",
			},
			Enums: []validate.EnumRule{
				{Field: "insuranceType", Allowed: validate.InsuranceTypes},
				{Field: "paymentTerm", Allowed: validate.PaymentTerms},
				{Field: "healthCondition", Allowed: validate.HealthConditions, Optional: true},
				{Field: "status", Allowed: validate.Statuses, Optional: true},
			},
		},
		Prepare: func(doc bson.M) error {
			if s, _ := doc["status"].(string); s == "" {
				doc["status"] = "Pending"
			}
			doc["applicationDate"] = time.Now()
			return nil
		},
		CreatedField:  "applicationDate",
		ValidateOnPut: true,
		ProtectWrites: true,
	}
}

// BlogPosts is the public blog resource, with keyword/tag search and the
// atomic view counter.
func BlogPosts() Definition {
	return Definition{
		Name:       "blog",
		Title:      "Blog",
		Plural:     "blogs",
		BasePath:   "/blogpostHome",
		Collection: database.CollBlogPosts,
		Rules: validate.Rules{
			Required: []string{"title", "details", "author"},
		},
		Prepare: func(doc bson.M) error {
			if _, ok := doc["image"]; !ok {
				doc["image"] = ""
			}
			if _, ok := doc["authorImage"]; !ok {
				doc["authorImage"] = ""
			}
			if _, ok := doc["category"]; !ok {
				doc["category"] = ""
			}
			doc["tags"] = NormalizeTags(doc["tags"])
			doc["views"] = int64(0)
			doc["createdAt"] = time.Now()
			return nil
		},
		SearchFields: []string{"title", "details"},
		TagField:     "tags",
		CounterField: "views",
		CreatedField: "createdAt",
	}
}

// Bookings reference an insurance offering by id (no cascade on delete) and
// carry denormalized offering and user fields.
func Bookings() Definition {
	return Definition{
		Name:       "booking",
		Title:      "Booking",
		Plural:     "bookings",
		BasePath:   "/bookInsurance",
		Collection: database.CollBookings,
		Rules: validate.Rules{
			Required: []string{"insuranceId", "userEmail"},
		},
		Prepare: func(doc bson.M) error {
			now := time.Now()
			doc["bookedAt"] = now
			doc["updatedAt"] = now
			return nil
		},
		RefFields:    []string{"insuranceId"},
		CreatedField: "bookedAt",
		UpdatedField: "updatedAt",
		OwnerField:   "userEmail",
	}
}

// PoliciesUser holds customer-submitted policy applications. PUT is an
// unvalidated partial merge, matching the public flow's loose contract.
func PoliciesUser() Definition {
	return Definition{
		Name:       "application",
		Title:      "Application",
		Plural:     "applications",
		BasePath:   "/policiesuser",
		Collection: database.CollPoliciesUser,
		Rules: validate.Rules{
			Required: []string{"name", "email", "insuranceType", "coverage", "paymentTerm"},
			Enums: []validate.EnumRule{
				{Field: "insuranceType", Allowed: validate.InsuranceTypes},
				{Field: "paymentTerm", Allowed: validate.PaymentTerms},
				{Field: "status", Allowed: validate.Statuses, Optional: true},
			},
		},
		Prepare: func(doc bson.M) error {
			doc["status"] = "Pending"
			doc["date"] = time.Now()
			return nil
		},
		CreatedField: "date",
	}
}

func ProfileDesign() Definition {
	return Definition{
		Name:       "profile",
		Title:      "Profile",
		Plural:     "profiles",
		BasePath:   "/profiledesign",
		Collection: database.CollProfileDesign,
		Rules: validate.Rules{
			Required: []string{"bio", "coverImage"},
		},
		Prepare: func(doc bson.M) error {
			if _, ok := doc["socialLinks"]; !ok {
				doc["socialLinks"] = bson.M{}
			}
			doc["date"] = time.Now()
			return nil
		},
		CreatedField: "date",
	}
}

// Customers are created on signup and upserted by the login exchange.
func Customers() Definition {
	return Definition{
		Name:       "customer",
		Title:      "Customer",
		Plural:     "customers",
		BasePath:   "/customer",
		Collection: database.CollCustomers,
		Rules: validate.Rules{
			Required: []string{"email"},
		},
		Prepare: func(doc bson.M) error {
			doc["createdAt"] = time.Now()
			return nil
		},
		CreatedField: "createdAt",
		OwnerField:   "email",
	}
}

// Payments records completed payment intents for bookkeeping.
func Payments() Definition {
	return Definition{
		Name:       "payment",
		Title:      "Payment",
		Plural:     "payments",
		BasePath:   "/payments",
		Collection: database.CollPayments,
		Rules: validate.Rules{
			Required: []string{"userEmail", "amount"},
		},
		Prepare: func(doc bson.M) error {
			doc["createdAt"] = time.Now()
			return nil
		},
		CreatedField: "createdAt",
		OwnerField:   "userEmail",
	}
}

// All returns every resource definition in mount order.
func All() []Definition {
	return []Definition{
		Management(),
		BlogPosts(),
		Bookings(),
		PoliciesUser(),
		ProfileDesign(),
		Customers(),
		Payments(),
	}
}
