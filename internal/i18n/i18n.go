// internal/i18n/i18n.go
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance *I18n
var once sync.Once

// Initialize loads the built-in English catalog and any locale files
// found under localesPath. Missing locale files are not an error; the
// embedded catalog always works.
func Initialize(localesPath string) error {
	var err error
	once.Do(func() {
		instance = &I18n{
			translations: map[string]map[string]string{"en": defaultCatalog()},
			defaultLang:  "en",
		}
		err = instance.LoadTranslations(localesPath)
	})
	return err
}

func (i *I18n) LoadTranslations(localesPath string) error {
	if localesPath == "" {
		return nil
	}

	entries, err := os.ReadDir(localesPath)
	if err != nil {
		// No locale directory; embedded defaults remain in effect.
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(localesPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", entry.Name(), err)
		}

		i.mu.Lock()
		existing, ok := i.translations[lang]
		if !ok {
			existing = make(map[string]string)
			i.translations[lang] = existing
		}
		for k, v := range translations {
			existing[k] = v
		}
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if translations, exists := i.translations[lang]; exists {
		if text, exists := translations[key]; exists {
			if len(args) > 0 {
				return fmt.Sprintf(text, args...)
			}
			return text
		}
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if translations, exists := i.translations[i.defaultLang]; exists {
			if text, exists := translations[key]; exists {
				if len(args) > 0 {
					return fmt.Sprintf(text, args...)
				}
				return text
			}
		}
	}

	// Return key if no translation found
	return key
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

func defaultCatalog() map[string]string {
	return map[string]string{
		KeySuccess: "Success",
		KeyError:   "Error",

		KeyAuthRequired:           "Authentication required",
		KeyAuthInvalidToken:       "Invalid authentication token",
		KeyAuthTokenExpired:       "Authentication token expired",
		KeyAuthInvalidCredentials: "Invalid email or password",
		KeyAuthLoginSuccess:       "Logged in successfully",
		KeyAuthRegisterSuccess:    "Account created successfully",
		KeyAdminAccessDenied:      "Platform owner access required",

		KeyPropertyListed:   "Property listed successfully",
		KeyPropertyNotFound: "Property not found",
		KeyPropertyExpired:  "The funding window for this property has expired",
		KeyPropertyFunded:   "This property is fully funded",

		KeyPurchaseSuccess:       "Tokens purchased successfully",
		KeyPurchaseFundingClosed: "The funding window is closed",
		KeyPurchaseExceedsSupply: "Purchase exceeds the remaining token supply",
		KeyPurchaseWrongPayment:  "Payment must exactly match the token price",
		KeyPurchaseBelowMinimum:  "Payment is below the minimum investment",

		KeyDistributionOpened:   "Revenue distribution opened",
		KeyDistributionNotFound: "Distribution not found",
		KeyClaimSuccess:         "Revenue claimed successfully",
		KeyClaimAlreadyClaimed:  "Revenue already claimed for this distribution",
		KeyClaimNoHolding:       "No tokens held in this property",

		KeyPaymentSuccess: "Payment processed successfully",
		KeyPaymentFailed:  "Payment failed",

		KeyValidationInvalid:  "Invalid %s",
		KeyValidationRequired: "%s is required",

		KeyUploadSuccess:     "File uploaded successfully",
		KeyUploadFailed:      "File upload failed",
		KeyUploadInvalidType: "File type not allowed",
	}
}
