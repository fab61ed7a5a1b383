package dataset

import (
	"fmt"
	"sync"

	"github.com/travelpass/dashboard/core/schema"
	errs "github.com/travelpass/dashboard/errors"
)

const usersSchemaJSON = `{
  "name": "users",
  "version": "1.0.0",
  "description": "Registered travellers",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "email": { "type": "string", "required": true, "unique": true },
    "firstName": { "type": "string", "required": true },
    "lastName": { "type": "string", "required": true },
    "phone": { "type": "string", "required": true },
    "nationality": { "type": "string", "required": true },
    "kycStatus": { "type": "enum", "required": true, "values": ["pending", "approved", "rejected"] },
    "accountStatus": { "type": "enum", "required": true, "values": ["active", "locked", "suspended"] },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "indexes": [
    { "name": "pk_users_id", "fields": ["id"], "type": "primary" },
    { "name": "idx_users_kyc", "fields": ["kycStatus"], "type": "normal" }
  ]
}`

const cardsSchemaJSON = `{
  "name": "cards",
  "version": "1.0.0",
  "description": "Physical prepaid cards",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "cardNumber": { "type": "string", "required": true, "unique": true },
    "userId": { "type": "string" },
    "status": { "type": "enum", "required": true, "values": ["active", "inactive", "locked", "expired"] },
    "balance": { "type": "number", "required": true },
    "expiryDate": { "type": "datetime", "required": true },
    "issuedDate": { "type": "datetime", "required": true },
    "lastUsed": { "type": "datetime" }
  },
  "indexes": [
    { "name": "pk_cards_id", "fields": ["id"], "type": "primary" },
    { "name": "idx_cards_status", "fields": ["status"], "type": "normal" }
  ]
}`

const walletsSchemaJSON = `{
  "name": "wallets",
  "version": "1.0.0",
  "description": "Digital wallets, optionally linked to a physical card",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "userId": { "type": "string", "required": true },
    "cardId": { "type": "string" },
    "balance": { "type": "number", "required": true },
    "currency": { "type": "string", "required": true },
    "status": { "type": "enum", "required": true, "values": ["active", "locked", "suspended"] },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "indexes": [
    { "name": "pk_wallets_id", "fields": ["id"], "type": "primary" }
  ]
}`

const transactionsSchemaJSON = `{
  "name": "transactions",
  "version": "1.0.0",
  "description": "Payments, top-ups, refunds and transfers",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "userId": { "type": "string", "required": true },
    "cardId": { "type": "string" },
    "walletId": { "type": "string" },
    "type": { "type": "enum", "required": true, "values": ["payment", "topup", "refund", "transfer"] },
    "amount": { "type": "number", "required": true },
    "originalAmount": { "type": "number" },
    "currency": { "type": "string", "required": true },
    "exchangeRate": { "type": "number" },
    "status": { "type": "enum", "required": true, "values": ["completed", "pending", "failed", "cancelled"] },
    "merchantId": { "type": "string" },
    "kioskId": { "type": "string" },
    "description": { "type": "string", "required": true },
    "failureReason": { "type": "string" },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "indexes": [
    { "name": "pk_transactions_id", "fields": ["id"], "type": "primary" },
    { "name": "idx_transactions_created", "fields": ["createdAt"], "type": "normal", "order": "desc" }
  ]
}`

const topUpsSchemaJSON = `{
  "name": "topups",
  "version": "1.0.0",
  "description": "Balance top-ups made at kiosks or by transfer",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "userId": { "type": "string", "required": true },
    "cardId": { "type": "string" },
    "walletId": { "type": "string" },
    "amount": { "type": "number", "required": true },
    "originalAmount": { "type": "number" },
    "currency": { "type": "string", "required": true },
    "exchangeRate": { "type": "number" },
    "status": { "type": "enum", "required": true, "values": ["completed", "pending", "failed", "cancelled"] },
    "kioskId": { "type": "string" },
    "paymentMethod": { "type": "string", "required": true },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "indexes": [
    { "name": "pk_topups_id", "fields": ["id"], "type": "primary" }
  ]
}`

const exchangeRatesSchemaJSON = `{
  "name": "exchangeRates",
  "version": "1.0.0",
  "description": "Currency conversion rates",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "fromCurrency": { "type": "string", "required": true },
    "toCurrency": { "type": "string", "required": true },
    "rate": { "type": "number", "required": true },
    "effectiveDate": { "type": "datetime", "required": true },
    "createdBy": { "type": "string", "required": true },
    "isActive": { "type": "boolean", "required": true, "default": true },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "indexes": [
    { "name": "pk_exchange_rates_id", "fields": ["id"], "type": "primary" }
  ]
}`

const kiosksSchemaJSON = `{
  "name": "kiosks",
  "version": "1.0.0",
  "description": "Self-service top-up kiosks",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "name": { "type": "string", "required": true },
    "location": { "type": "object", "required": true, "schema": { "id": "location" } },
    "status": { "type": "enum", "required": true, "values": ["active", "maintenance", "offline"] },
    "lastMaintenance": { "type": "datetime" },
    "adminId": { "type": "string" },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "nestedSchemas": {
    "location": {
      "name": "location",
      "fields": {
        "address": { "type": "string", "required": true },
        "latitude": { "type": "number", "required": true },
        "longitude": { "type": "number", "required": true }
      }
    }
  },
  "indexes": [
    { "name": "pk_kiosks_id", "fields": ["id"], "type": "primary" },
    { "name": "idx_kiosks_address", "fields": ["location.address"], "type": "normal" }
  ]
}`

const merchantsSchemaJSON = `{
  "name": "merchants",
  "version": "1.0.0",
  "description": "Merchants accepting TravelPass payments",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "name": { "type": "string", "required": true },
    "businessType": { "type": "string", "required": true },
    "contactEmail": { "type": "string", "required": true },
    "contactPhone": { "type": "string", "required": true },
    "address": { "type": "string", "required": true },
    "commissionRate": { "type": "number", "required": true },
    "status": { "type": "enum", "required": true, "values": ["active", "inactive", "suspended"] },
    "devices": { "type": "array", "required": true, "itemsType": "object", "schema": { "id": "posDevice" } },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "nestedSchemas": {
    "posDevice": {
      "name": "posDevice",
      "fields": {
        "id": { "type": "string", "required": true },
        "deviceId": { "type": "string", "required": true },
        "merchantId": { "type": "string", "required": true },
        "status": { "type": "enum", "required": true, "values": ["active", "inactive", "maintenance"] },
        "lastUsed": { "type": "datetime" },
        "createdAt": { "type": "datetime", "required": true }
      }
    }
  },
  "indexes": [
    { "name": "pk_merchants_id", "fields": ["id"], "type": "primary" }
  ]
}`

const adminsSchemaJSON = `{
  "name": "admins",
  "version": "1.0.0",
  "description": "Back-office operators",
  "fields": {
    "id": { "type": "string", "required": true, "unique": true },
    "username": { "type": "string", "required": true, "unique": true },
    "email": { "type": "string", "required": true },
    "firstName": { "type": "string", "required": true },
    "lastName": { "type": "string", "required": true },
    "role": { "type": "enum", "required": true, "values": ["super_admin", "admin", "operator"] },
    "permissions": { "type": "object", "required": true, "schema": { "id": "permissions" } },
    "status": { "type": "enum", "required": true, "values": ["active", "inactive", "locked"] },
    "lastLogin": { "type": "datetime" },
    "createdAt": { "type": "datetime", "required": true },
    "updatedAt": { "type": "datetime", "required": true }
  },
  "nestedSchemas": {
    "permissions": {
      "name": "permissions",
      "fields": {
        "dashboard": { "type": "boolean", "required": true },
        "users": { "type": "object", "required": true, "schema": { "id": "access" } },
        "cards": { "type": "object", "required": true, "schema": { "id": "access" } },
        "wallets": { "type": "object", "required": true, "schema": { "id": "access" } },
        "transactions": { "type": "object", "required": true, "schema": { "id": "access" } },
        "topups": { "type": "object", "required": true, "schema": { "id": "access" } },
        "exchangeRates": { "type": "object", "required": true, "schema": { "id": "access" } },
        "kiosks": { "type": "object", "required": true, "schema": { "id": "access" } },
        "merchants": { "type": "object", "required": true, "schema": { "id": "access" } },
        "admins": { "type": "object", "required": true, "schema": { "id": "access" } }
      }
    },
    "access": {
      "name": "access",
      "fields": {
        "view": { "type": "boolean", "required": true },
        "create": { "type": "boolean" },
        "edit": { "type": "boolean" },
        "delete": { "type": "boolean" },
        "kyc": { "type": "boolean" },
        "topup": { "type": "boolean" },
        "lock": { "type": "boolean" },
        "export": { "type": "boolean" },
        "refund": { "type": "boolean" },
        "process": { "type": "boolean" },
        "cancel": { "type": "boolean" }
      }
    }
  },
  "indexes": [
    { "name": "pk_admins_id", "fields": ["id"], "type": "primary" }
  ]
}`

var schemaSources = map[string]string{
	Users:         usersSchemaJSON,
	Cards:         cardsSchemaJSON,
	Wallets:       walletsSchemaJSON,
	Transactions:  transactionsSchemaJSON,
	TopUps:        topUpsSchemaJSON,
	ExchangeRates: exchangeRatesSchemaJSON,
	Kiosks:        kiosksSchemaJSON,
	Merchants:     merchantsSchemaJSON,
	Admins:        adminsSchemaJSON,
}

var (
	parseOnce sync.Once
	parsed    map[string]*schema.SchemaDefinition
	parseErr  error
)

// Schemas returns the definition of every collection, keyed by name. The
// definitions are shared; callers must not modify them.
func Schemas() (map[string]*schema.SchemaDefinition, error) {
	parseOnce.Do(func() {
		parsed = make(map[string]*schema.SchemaDefinition, len(schemaSources))
		for name, src := range schemaSources {
			sc, err := schema.Parse([]byte(src))
			if err != nil {
				parseErr = fmt.Errorf("collection %s: %w", name, err)
				return
			}
			parsed[name] = sc
		}
	})
	return parsed, parseErr
}

// Schema returns the definition of one collection.
func Schema(collection string) (*schema.SchemaDefinition, error) {
	all, err := Schemas()
	if err != nil {
		return nil, err
	}
	sc, ok := all[collection]
	if !ok {
		return nil, errs.UnknownCollectionErr(collection)
	}
	return sc, nil
}

// MustSchema is like Schema but panics on an unknown collection. It is meant
// for package-level wiring of the built-in collections.
func MustSchema(collection string) *schema.SchemaDefinition {
	sc, err := Schema(collection)
	if err != nil {
		panic(err)
	}
	return sc
}
