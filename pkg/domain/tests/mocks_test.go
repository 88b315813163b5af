package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"autoshop/pkg/domain/model"
	"autoshop/pkg/domain/service"
)

func ownerSession(shopID uuid.UUID) model.Session {
	return sessionFor(shopID, model.RoleOwner)
}

func staffSession(shopID uuid.UUID) model.Session {
	return sessionFor(shopID, model.RoleStaff)
}

func sessionFor(shopID uuid.UUID, role model.Role) model.Session {
	userID := uuid.New()
	return model.Session{
		UserID:      userID,
		AccessToken: "token-" + userID.String(),
		Profile: &model.Profile{
			ID:     uuid.New(),
			UserID: userID,
			ShopID: shopID,
			Role:   role,
			Active: true,
		},
	}
}

// --- Invoice store ---

type mockInvoiceStore struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]model.Invoice
	items    map[uuid.UUID][]model.LineItem
	seq      map[uuid.UUID]int
	addErr   error
}

func newMockInvoiceStore() *mockInvoiceStore {
	return &mockInvoiceStore{
		invoices: make(map[uuid.UUID]model.Invoice),
		items:    make(map[uuid.UUID][]model.LineItem),
		seq:      make(map[uuid.UUID]int),
	}
}

func (m *mockInvoiceStore) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockInvoiceStore) Create(_ context.Context, invoice *model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = *invoice
	return nil
}

func (m *mockInvoiceStore) Find(_ context.Context, shopID, id uuid.UUID) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[id]
	if !ok || invoice.ShopID != shopID {
		return nil, model.ErrInvoiceNotFound
	}
	return &invoice, nil
}

func (m *mockInvoiceStore) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Invoice
	for _, invoice := range m.invoices {
		if invoice.ShopID == shopID {
			result = append(result, invoice)
		}
	}
	return result, nil
}

func (m *mockInvoiceStore) AddItem(_ context.Context, item *model.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	invoice, ok := m.invoices[item.InvoiceID]
	if !ok {
		return model.ErrInvoiceNotFound
	}
	if !invoice.Status.Editable() {
		return model.ErrInvoiceNotEditable
	}
	m.items[item.InvoiceID] = append(m.items[item.InvoiceID], *item)
	return nil
}

func (m *mockInvoiceStore) ListItems(_ context.Context, invoiceID uuid.UUID) ([]model.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]model.LineItem(nil), m.items[invoiceID]...)
	return items, nil
}

// RecalculateTotals sums the stored items the way the database procedure does.
func (m *mockInvoiceStore) RecalculateTotals(_ context.Context, invoiceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[invoiceID]
	if !ok {
		return model.ErrInvoiceNotFound
	}
	net, vat := decimal.Zero, decimal.Zero
	for _, item := range m.items[invoiceID] {
		net = net.Add(item.NetAmount)
		vat = vat.Add(item.VATAmount)
	}
	invoice.TotalNet = net
	invoice.TotalVAT = vat
	invoice.TotalGross = net.Add(vat)
	m.invoices[invoiceID] = invoice
	return nil
}

func (m *mockInvoiceStore) IssueInvoiceNumber(_ context.Context, shopID, invoiceID uuid.UUID, issuedAt time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[invoiceID]
	if !ok || invoice.ShopID != shopID {
		return "", model.ErrInvoiceNotFound
	}
	if invoice.Status != model.Draft {
		return "", model.ErrInvoiceAlreadyFinalized
	}
	m.seq[shopID]++
	number := fmt.Sprintf("INV-%d-%05d", issuedAt.Year(), m.seq[shopID])
	invoice.Status = model.Final
	invoice.InvoiceNumber = &number
	m.invoices[invoiceID] = invoice
	return number, nil
}

func (m *mockInvoiceStore) setStatus(id uuid.UUID, status model.InvoiceStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice := m.invoices[id]
	invoice.Status = status
	m.invoices[id] = invoice
}

type failingRecalculator struct {
	err error
}

func (f *failingRecalculator) RecalculateTotals(context.Context, uuid.UUID) error {
	return f.err
}

// --- Finalizer ---

// mockFinalizer stands in for the remote finalize function and finalizes in the store.
type mockFinalizer struct {
	store  *mockInvoiceStore
	err    error
	tokens []string
	calls  int
}

func (f *mockFinalizer) FinalizeInvoice(ctx context.Context, invoiceID uuid.UUID, accessToken string) (string, error) {
	f.calls++
	f.tokens = append(f.tokens, accessToken)
	if f.err != nil {
		return "", f.err
	}
	f.store.mu.Lock()
	invoice, ok := f.store.invoices[invoiceID]
	f.store.mu.Unlock()
	if !ok {
		return "", model.ErrInvoiceNotFound
	}
	return f.store.IssueInvoiceNumber(ctx, invoice.ShopID, invoiceID, time.Now())
}

// --- Customers and vehicles ---

type mockCustomerRepository struct {
	customers map[uuid.UUID]model.Customer
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[uuid.UUID]model.Customer)}
}

func (m *mockCustomerRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockCustomerRepository) Create(_ context.Context, customer *model.Customer) error {
	m.customers[customer.ID] = *customer
	return nil
}

func (m *mockCustomerRepository) Find(_ context.Context, shopID, id uuid.UUID) (*model.Customer, error) {
	customer, ok := m.customers[id]
	if !ok || customer.ShopID != shopID {
		return nil, model.ErrCustomerNotFound
	}
	return &customer, nil
}

func (m *mockCustomerRepository) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Customer, error) {
	var result []model.Customer
	for _, customer := range m.customers {
		if customer.ShopID == shopID {
			result = append(result, customer)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

type mockVehicleRepository struct {
	vehicles map[uuid.UUID]model.Vehicle
}

func newMockVehicleRepository() *mockVehicleRepository {
	return &mockVehicleRepository{vehicles: make(map[uuid.UUID]model.Vehicle)}
}

func (m *mockVehicleRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockVehicleRepository) Create(_ context.Context, vehicle *model.Vehicle) error {
	m.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (m *mockVehicleRepository) Find(_ context.Context, shopID, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, ok := m.vehicles[id]
	if !ok || vehicle.ShopID != shopID {
		return nil, model.ErrVehicleNotFound
	}
	return &vehicle, nil
}

func (m *mockVehicleRepository) ListByCustomer(_ context.Context, shopID, customerID uuid.UUID) ([]model.Vehicle, error) {
	var result []model.Vehicle
	for _, vehicle := range m.vehicles {
		if vehicle.ShopID == shopID && vehicle.CustomerID == customerID {
			result = append(result, vehicle)
		}
	}
	return result, nil
}

// --- Profiles, shop, dashboard ---

type mockProfileRepository struct {
	profiles map[uuid.UUID]model.Profile
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[uuid.UUID]model.Profile)}
}

func (m *mockProfileRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockProfileRepository) Create(_ context.Context, profile *model.Profile) error {
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *mockProfileRepository) add(profile model.Profile) {
	m.profiles[profile.ID] = profile
}

func (m *mockProfileRepository) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Profile, error) {
	for _, profile := range m.profiles {
		if profile.UserID == userID {
			p := profile
			return &p, nil
		}
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) Find(_ context.Context, shopID, id uuid.UUID) (*model.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok || profile.ShopID != shopID {
		return nil, model.ErrProfileNotFound
	}
	return &profile, nil
}

func (m *mockProfileRepository) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Profile, error) {
	var result []model.Profile
	for _, profile := range m.profiles {
		if profile.ShopID == shopID {
			result = append(result, profile)
		}
	}
	return result, nil
}

func (m *mockProfileRepository) SetActive(_ context.Context, shopID, id uuid.UUID, active bool) error {
	profile, ok := m.profiles[id]
	if !ok || profile.ShopID != shopID {
		return model.ErrProfileNotFound
	}
	profile.Active = active
	m.profiles[id] = profile
	return nil
}

type mockShopRepository struct {
	shops map[uuid.UUID]model.Shop
}

func (m *mockShopRepository) Create(_ context.Context, shop *model.Shop) error {
	m.shops[shop.ID] = *shop
	return nil
}

func (m *mockShopRepository) Find(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	shop, ok := m.shops[id]
	if !ok {
		return nil, model.ErrShopNotFound
	}
	return &shop, nil
}

func (m *mockShopRepository) Update(_ context.Context, shop *model.Shop) error {
	if _, ok := m.shops[shop.ID]; !ok {
		return model.ErrShopNotFound
	}
	m.shops[shop.ID] = *shop
	return nil
}

type mockDashboardReader struct {
	mu      sync.Mutex
	days    []time.Time
	since   []time.Time
	today   int
	month   int
	revenue decimal.Decimal
	err     error
}

func (m *mockDashboardReader) CountInvoicesOn(_ context.Context, _ uuid.UUID, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days = append(m.days, day)
	return m.today, m.err
}

func (m *mockDashboardReader) CountInvoicesSince(_ context.Context, _ uuid.UUID, from time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = append(m.since, from)
	return m.month, nil
}

func (m *mockDashboardReader) RevenueSince(_ context.Context, _ uuid.UUID, from time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = append(m.since, from)
	return m.revenue, nil
}

// --- Auth collaborators ---

type credentials struct {
	password string
	token    string
}

type mockIdentityProvider struct {
	users     map[string]model.AuthUser
	accounts  map[string]credentials
	signInErr error
	signedOut []string
}

var errInvalidCredentials = errors.New("Invalid login credentials")

func newMockIdentityProvider() *mockIdentityProvider {
	return &mockIdentityProvider{
		users:    make(map[string]model.AuthUser),
		accounts: make(map[string]credentials),
	}
}

func (m *mockIdentityProvider) register(email, password, token string) model.AuthUser {
	user := model.AuthUser{ID: uuid.New(), Email: email}
	m.users[token] = user
	m.accounts[email] = credentials{password: password, token: token}
	return user
}

func (m *mockIdentityProvider) SignInWithPassword(_ context.Context, email, password string) (*model.AuthToken, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	account, ok := m.accounts[email]
	if !ok || account.password != password {
		return nil, errInvalidCredentials
	}
	return &model.AuthToken{
		AccessToken: account.token,
		User:        m.users[account.token],
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (m *mockIdentityProvider) GetUser(_ context.Context, accessToken string) (*model.AuthUser, error) {
	user, ok := m.users[accessToken]
	if !ok {
		return nil, model.ErrUnauthenticated
	}
	return &user, nil
}

func (m *mockIdentityProvider) SignOut(_ context.Context, accessToken string) error {
	m.signedOut = append(m.signedOut, accessToken)
	return nil
}

type mockProvisioner struct {
	members []model.NewStaffMember
	err     error
}

func (m *mockProvisioner) CreateStaffUser(_ context.Context, member model.NewStaffMember, _ string) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	m.members = append(m.members, member)
	return uuid.New(), nil
}

type mockPublisher struct {
	events []model.SessionEvent
}

func (m *mockPublisher) Publish(event model.SessionEvent) {
	m.events = append(m.events, event)
}

type mockEventDispatcher struct {
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}

var (
	_ model.InvoiceRepository   = &mockInvoiceStore{}
	_ model.TotalsRecalculator  = &mockInvoiceStore{}
	_ model.InvoiceNumberIssuer = &mockInvoiceStore{}
	_ model.InvoiceFinalizer    = &mockFinalizer{}
	_ model.CustomerRepository  = &mockCustomerRepository{}
	_ model.VehicleRepository   = &mockVehicleRepository{}
	_ model.ProfileRepository   = &mockProfileRepository{}
	_ model.ShopRepository      = &mockShopRepository{}
	_ model.DashboardReader     = &mockDashboardReader{}
	_ model.IdentityProvider    = &mockIdentityProvider{}
	_ model.StaffProvisioner    = &mockProvisioner{}
	_ service.SessionPublisher  = &mockPublisher{}
	_ service.EventDispatcher   = &mockEventDispatcher{}
)
