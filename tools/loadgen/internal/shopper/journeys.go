package shopper

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/emedico/backend/tools/loadgen/internal/config"
)

// Catalog items the journeys rely on
const (
	medicineOTC          = "med001"
	medicinePrescription = "med002"
	medicineVitamins     = "med003"
	medicineAllergy      = "med005"
)

// Journey is one scripted shopper visit.
type Journey func(ctx context.Context, s *Shopper) error

// Journeys maps journey names to their scripts.
var Journeys = map[string]Journey{
	config.JourneyBrowse:       Browse,
	config.JourneyCart:         Cart,
	config.JourneyCheckout:     Checkout,
	config.JourneyPrescription: Prescription,
	config.JourneyAccount:      Account,
}

// Lookup returns the journey registered under name.
func Lookup(name string) (Journey, error) {
	j, ok := Journeys[name]
	if !ok {
		return nil, fmt.Errorf("unknown journey %q", name)
	}
	return j, nil
}

// Browse reads the catalog and pharmacy list without a session.
func Browse(ctx context.Context, s *Shopper) error {
	var medicines []struct {
		ID string `json:"id"`
	}
	if err := s.get(ctx, "list_medicines", "/catalog/medicines", &medicines); err != nil {
		return err
	}
	if err := s.get(ctx, "list_categories", "/catalog/categories", nil); err != nil {
		return err
	}
	if len(medicines) > 0 {
		id := medicines[s.faker.IntRange(0, len(medicines)-1)].ID
		if err := s.get(ctx, "get_medicine", "/catalog/medicines/"+id, nil); err != nil {
			return err
		}
	}
	return s.get(ctx, "list_pharmacies", "/pharmacies", nil)
}

// Cart fills and edits a cart, then leaves.
func Cart(ctx context.Context, s *Shopper) error {
	sid, err := s.newSession(ctx)
	if err != nil {
		return err
	}

	steps := []func() error{
		func() error { return s.addItem(ctx, sid, medicineOTC, s.faker.IntRange(1, 3)) },
		func() error { return s.addItem(ctx, sid, medicineVitamins, 1) },
		func() error {
			return s.send(ctx, "update_item", http.MethodPut, "/sessions/"+sid+"/cart/items/"+medicineOTC,
				map[string]int{"quantity": s.faker.IntRange(1, 5)}, nil)
		},
		func() error { return s.get(ctx, "get_cart", "/sessions/"+sid+"/cart", nil) },
		func() error {
			return s.send(ctx, "remove_item", http.MethodDelete, "/sessions/"+sid+"/cart/items/"+medicineVitamins, nil, nil)
		},
		func() error {
			return s.send(ctx, "toggle_theme", http.MethodPost, "/sessions/"+sid+"/theme/toggle", nil, nil)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return errors.Join(err, s.closeSession(ctx, sid))
		}
	}
	return s.closeSession(ctx, sid)
}

// Checkout buys over-the-counter items and reads the order back.
func Checkout(ctx context.Context, s *Shopper) error {
	sid, err := s.newSession(ctx)
	if err != nil {
		return err
	}
	if err := s.addItem(ctx, sid, medicineOTC, s.faker.IntRange(1, 4)); err != nil {
		return err
	}
	if err := s.addItem(ctx, sid, medicineAllergy, 1); err != nil {
		return err
	}
	orderID, err := s.checkout(ctx, sid)
	if err != nil {
		return err
	}
	if err := s.get(ctx, "get_order", "/orders/"+orderID, nil); err != nil {
		return err
	}
	return s.get(ctx, "list_orders", "/sessions/"+sid+"/orders", nil)
}

// Prescription uploads a prescription image before buying a prescription item.
func Prescription(ctx context.Context, s *Shopper) error {
	sid, err := s.newSession(ctx)
	if err != nil {
		return err
	}
	if err := s.addItem(ctx, sid, medicinePrescription, 1); err != nil {
		return err
	}
	if err := s.uploadPrescription(ctx, sid); err != nil {
		return err
	}
	if err := s.get(ctx, "get_prescription", "/sessions/"+sid+"/prescription", nil); err != nil {
		return err
	}
	_, err = s.checkout(ctx, sid)
	return err
}

// Account registers a customer, signs in and out.
func Account(ctx context.Context, s *Shopper) error {
	email := s.faker.Email()
	password := s.faker.Password(true, true, true, false, false, 14)

	if err := s.send(ctx, "register", http.MethodPost, "/auth/register", map[string]string{
		"full_name": s.faker.Name(),
		"email":     email,
		"password":  password,
	}, nil, http.StatusCreated); err != nil {
		return err
	}

	var login struct {
		Token struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"token"`
	}
	if err := s.send(ctx, "login", http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, &login); err != nil {
		return err
	}

	s.token = login.Token.AccessToken
	defer func() { s.token = "" }()

	if err := s.get(ctx, "current_user", "/auth/me", nil); err != nil {
		return err
	}
	return s.send(ctx, "logout", http.MethodPost, "/auth/logout",
		map[string]string{"refresh_token": login.Token.RefreshToken}, nil)
}
