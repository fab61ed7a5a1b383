package dataset

func str(s string) *string { return &s }
func flag(b bool) *bool     { return &b }

// SeedUsers and the other Seed* functions return fresh copies of the
// fixture records the dashboard ships with.
func SeedUsers() []User {
	return []User{
		{
			ID: "1", Email: "nguyen.van.a@gmail.com", FirstName: "Nguyễn Văn", LastName: "A",
			Phone: "+84901234567", Nationality: "Vietnamese",
			KYCStatus: KYCApproved, AccountStatus: AccountActive,
			CreatedAt: "2024-01-15T08:30:00Z", UpdatedAt: "2024-01-20T10:15:00Z",
		},
		{
			ID: "2", Email: "tran.thi.b@gmail.com", FirstName: "Trần Thị", LastName: "B",
			Phone: "+84902345678", Nationality: "Vietnamese",
			KYCStatus: KYCPending, AccountStatus: AccountActive,
			CreatedAt: "2024-01-16T09:45:00Z", UpdatedAt: "2024-01-16T09:45:00Z",
		},
		{
			ID: "3", Email: "john.smith@gmail.com", FirstName: "John", LastName: "Smith",
			Phone: "+84903456789", Nationality: "American",
			KYCStatus: KYCApproved, AccountStatus: AccountLocked,
			CreatedAt: "2024-01-17T14:20:00Z", UpdatedAt: "2024-01-18T16:30:00Z",
		},
	}
}

func SeedCards() []PhysicalCard {
	return []PhysicalCard{
		{
			ID: "1", CardNumber: "1234567890123456", UserID: str("1"), Status: CardActive, Balance: 500000,
			ExpiryDate: "2027-01-15", IssuedDate: "2024-01-15", LastUsed: str("2024-01-30T12:00:00Z"),
		},
		{
			ID: "2", CardNumber: "1234567890123457", UserID: str("3"), Status: CardLocked, Balance: 250000,
			ExpiryDate: "2027-01-17", IssuedDate: "2024-01-17", LastUsed: str("2024-01-25T15:30:00Z"),
		},
		{
			ID: "3", CardNumber: "1234567890123458", Status: CardInactive, Balance: 0,
			ExpiryDate: "2027-02-01", IssuedDate: "2024-02-01",
		},
	}
}

func SeedWallets() []DigitalWallet {
	return []DigitalWallet{
		{
			ID: "1", UserID: "1", CardID: str("1"), Balance: 750000, Currency: "VND", Status: WalletActive,
			CreatedAt: "2024-01-15T08:30:00Z", UpdatedAt: "2024-01-30T12:00:00Z",
		},
		{
			ID: "2", UserID: "2", CardID: str("2"), Balance: 300000, Currency: "VND", Status: WalletActive,
			CreatedAt: "2024-01-16T09:45:00Z", UpdatedAt: "2024-01-29T14:20:00Z",
		},
		{
			ID: "3", UserID: "3", CardID: str("3"), Balance: 100000, Currency: "VND", Status: WalletLocked,
			CreatedAt: "2024-01-17T14:20:00Z", UpdatedAt: "2024-01-18T16:30:00Z",
		},
	}
}

func SeedTransactions() []Transaction {
	return []Transaction{
		{
			ID: "1", UserID: "1", CardID: str("1"), Type: TransactionPayment, Amount: 50000, Currency: "VND",
			Status: PaymentCompleted, MerchantID: str("1"), Description: "Thanh toán tại cửa hàng tiện lợi",
			CreatedAt: "2024-01-30T12:00:00Z", UpdatedAt: "2024-01-30T12:00:00Z",
		},
		{
			ID: "2", UserID: "1", WalletID: str("1"), Type: TransactionTopUp, Amount: 200000, Currency: "VND",
			Status: PaymentCompleted, KioskID: str("1"), Description: "Nạp tiền tại kiosk",
			CreatedAt: "2024-01-29T14:30:00Z", UpdatedAt: "2024-01-29T14:30:00Z",
		},
		{
			ID: "3", UserID: "2", CardID: str("2"), Type: TransactionPayment, Amount: 25000, Currency: "VND",
			Status: PaymentFailed, MerchantID: str("2"), Description: "Thanh toán không thành công",
			FailureReason: str("Số dư không đủ để thực hiện giao dịch"),
			CreatedAt:     "2024-01-28T10:15:00Z", UpdatedAt: "2024-01-28T10:15:00Z",
		},
	}
}

func SeedTopUps() []TopUp {
	return []TopUp{
		{
			ID: "1", UserID: "1", CardID: str("1"), Amount: 200000, Currency: "VND", Status: PaymentCompleted,
			KioskID: str("1"), PaymentMethod: "cash",
			CreatedAt: "2024-01-29T14:30:00Z", UpdatedAt: "2024-01-29T14:30:00Z",
		},
		{
			ID: "2", UserID: "2", WalletID: str("2"), Amount: 100000, Currency: "VND", Status: PaymentPending,
			PaymentMethod: "bank_transfer",
			CreatedAt:     "2024-01-30T08:00:00Z", UpdatedAt: "2024-01-30T08:00:00Z",
		},
	}
}

func SeedExchangeRates() []ExchangeRate {
	return []ExchangeRate{
		{
			ID: "1", FromCurrency: "USD", ToCurrency: "VND", Rate: 24500, EffectiveDate: "2024-01-30",
			CreatedBy: "admin1", IsActive: true,
			CreatedAt: "2024-01-30T00:00:00Z", UpdatedAt: "2024-01-30T00:00:00Z",
		},
		{
			ID: "2", FromCurrency: "EUR", ToCurrency: "VND", Rate: 26800, EffectiveDate: "2024-01-30",
			CreatedBy: "admin1", IsActive: true,
			CreatedAt: "2024-01-30T00:00:00Z", UpdatedAt: "2024-01-30T00:00:00Z",
		},
	}
}

func SeedKiosks() []Kiosk {
	return []Kiosk{
		{
			ID: "1", Name: "Kiosk Bến Thành",
			Location: Location{Address: "Chợ Bến Thành, Quận 1, TP.HCM", Latitude: 10.772, Longitude: 106.698},
			Status:   KioskActive, LastMaintenance: str("2024-01-25T10:00:00Z"), AdminID: str("admin2"),
			CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-25T10:00:00Z",
		},
		{
			ID: "2", Name: "Kiosk Sân Bay Tân Sơn Nhất",
			Location: Location{Address: "Sân bay Tân Sơn Nhất, TP.HCM", Latitude: 10.8187, Longitude: 106.652},
			Status:   KioskMaintenance, LastMaintenance: str("2024-01-30T08:00:00Z"),
			CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-30T08:00:00Z",
		},
	}
}

func SeedMerchants() []Merchant {
	return []Merchant{
		{
			ID: "1", Name: "Cửa hàng tiện lợi ABC", BusinessType: "Convenience Store",
			ContactEmail: "abc@store.com", ContactPhone: "+84901111111",
			Address: "123 Nguyễn Huệ, Quận 1, TP.HCM", CommissionRate: 2.5, Status: MerchantActive,
			Devices: []POSDevice{{
				ID: "1", DeviceID: "POS001", MerchantID: "1", Status: "active",
				LastUsed: str("2024-01-30T12:00:00Z"), CreatedAt: "2024-01-15T00:00:00Z",
			}},
			CreatedAt: "2024-01-15T00:00:00Z", UpdatedAt: "2024-01-30T12:00:00Z",
		},
		{
			ID: "2", Name: "Nhà hàng XYZ", BusinessType: "Restaurant",
			ContactEmail: "xyz@restaurant.com", ContactPhone: "+84902222222",
			Address: "456 Lê Lợi, Quận 1, TP.HCM", CommissionRate: 3.0, Status: MerchantActive,
			Devices: []POSDevice{{
				ID: "2", DeviceID: "POS002", MerchantID: "2", Status: "active",
				LastUsed: str("2024-01-29T18:30:00Z"), CreatedAt: "2024-01-16T00:00:00Z",
			}},
			CreatedAt: "2024-01-16T00:00:00Z", UpdatedAt: "2024-01-29T18:30:00Z",
		},
	}
}

func SeedAdmins() []Admin {
	return []Admin{
		{
			ID: "admin1", Username: "superadmin", Email: "admin@travelpass.com",
			FirstName: "Super", LastName: "Admin", Role: RoleSuperAdmin,
			Permissions: AdminPermissions{
				Dashboard:     true,
				Users:         Access{View: true, Create: flag(true), Edit: flag(true), Delete: flag(true), KYC: flag(true)},
				Cards:         Access{View: true, Create: flag(true), Edit: flag(true), Delete: flag(true), TopUp: flag(true)},
				Wallets:       Access{View: true, Edit: flag(true), Lock: flag(true)},
				Transactions:  Access{View: true, Export: flag(true), Refund: flag(true)},
				TopUps:        Access{View: true, Process: flag(true), Cancel: flag(true)},
				ExchangeRates: Access{View: true, Create: flag(true), Edit: flag(true)},
				Kiosks:        Access{View: true, Create: flag(true), Edit: flag(true), Delete: flag(true)},
				Merchants:     Access{View: true, Create: flag(true), Edit: flag(true), Delete: flag(true)},
				Admins:        Access{View: true, Create: flag(true), Edit: flag(true), Delete: flag(true)},
			},
			Status: AdminActive, LastLogin: str("2024-01-30T08:00:00Z"),
			CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-30T08:00:00Z",
		},
		{
			ID: "admin2", Username: "operator1", Email: "operator1@travelpass.com",
			FirstName: "Operator", LastName: "One", Role: RoleOperator,
			Permissions: AdminPermissions{
				Dashboard:     true,
				Users:         Access{View: true, Create: flag(false), Edit: flag(true), Delete: flag(false), KYC: flag(true)},
				Cards:         Access{View: true, Create: flag(false), Edit: flag(true), Delete: flag(false), TopUp: flag(true)},
				Wallets:       Access{View: true, Edit: flag(false), Lock: flag(false)},
				Transactions:  Access{View: true, Export: flag(false), Refund: flag(false)},
				TopUps:        Access{View: true, Process: flag(true), Cancel: flag(false)},
				ExchangeRates: Access{View: true, Create: flag(false), Edit: flag(false)},
				Kiosks:        Access{View: true, Create: flag(false), Edit: flag(true), Delete: flag(false)},
				Merchants:     Access{View: true, Create: flag(false), Edit: flag(false), Delete: flag(false)},
				Admins:        Access{View: false, Create: flag(false), Edit: flag(false), Delete: flag(false)},
			},
			Status: AdminActive, LastLogin: str("2024-01-29T14:30:00Z"),
			CreatedAt: "2024-01-10T00:00:00Z", UpdatedAt: "2024-01-29T14:30:00Z",
		},
	}
}
