package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/example/lumera/internal/models"
)

// Per-call destination fallbacks when an order somehow reaches the carrier
// without resolved codes.
const (
	ghnFallbackDistrictID = 1444
	ghnFallbackWardCode   = "20308"
)

// carrierStatusMap translates GHN raw statuses to the internal state machine.
var carrierStatusMap = map[string]string{
	"ready_to_pick": models.ShippingStatusPending,

	"picking":               models.ShippingStatusPickedUp,
	"money_collect_picking": models.ShippingStatusPickedUp,
	"picked":                models.ShippingStatusPickedUp,
	"storing":               models.ShippingStatusPickedUp,
	"sorting":               models.ShippingStatusPickedUp,

	"transporting":             models.ShippingStatusOutForDelivery,
	"delivering":               models.ShippingStatusOutForDelivery,
	"money_collect_delivering": models.ShippingStatusOutForDelivery,

	"delivered": models.ShippingStatusDelivered,

	"cancel":        models.ShippingStatusFailed,
	"delivery_fail": models.ShippingStatusFailed,
	"return_fail":   models.ShippingStatusFailed,

	"waiting_to_return":   models.ShippingStatusReturning,
	"return":              models.ShippingStatusReturning,
	"return_transporting": models.ShippingStatusReturning,
	"return_sorting":      models.ShippingStatusReturning,
	"returning":           models.ShippingStatusReturning,

	"returned": models.ShippingStatusReturned,
}

// MapCarrierStatus translates a GHN status into an internal shipping status.
// Unknown statuses land on PICKED_UP so the sync keeps polling them.
func MapCarrierStatus(raw string) string {
	if status, ok := carrierStatusMap[raw]; ok {
		return status
	}
	log.Printf("[ghn] unknown carrier status %q, treating as %s", raw, models.ShippingStatusPickedUp)
	return models.ShippingStatusPickedUp
}

// GHNService is the HTTP client for the GHN shipping API.
type GHNService struct {
	baseURL string
	token   string
	shopID  string
	client  *http.Client
	log     *log.Logger
}

func NewGHNService(baseURL, token, shopID string) *GHNService {
	return &GHNService{
		baseURL: baseURL,
		token:   token,
		shopID:  shopID,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log.New(os.Stdout, "[ghn] ", log.LstdFlags),
	}
}

type ghnEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type ghnAvailableService struct {
	ServiceID     int `json:"service_id"`
	ServiceTypeID int `json:"service_type_id"`
}

// availableServiceType asks GHN which service types run to a district.
// Failures fall back to the standard type so order creation still proceeds.
func (s *GHNService) availableServiceType(ctx context.Context, toDistrictID int) int {
	const standardService = 2

	data, err := s.post(ctx, "/v2/shipping-order/available-services", map[string]any{
		"shop_id":       s.shopID,
		"to_district":   toDistrictID,
		"from_district": ghnFallbackDistrictID,
	})
	if err != nil {
		s.log.Printf("available-services for district %d failed, using standard: %v", toDistrictID, err)
		return standardService
	}

	var services []ghnAvailableService
	if err := json.Unmarshal(data, &services); err != nil || len(services) == 0 {
		return standardService
	}
	for _, svc := range services {
		if svc.ServiceTypeID == standardService {
			return standardService
		}
	}
	return services[0].ServiceTypeID
}

type ghnCreateOrderRequest struct {
	ToName         string  `json:"to_name"`
	ToPhone        string  `json:"to_phone"`
	ToAddress      string  `json:"to_address"`
	ToWardCode     string  `json:"to_ward_code"`
	ToDistrictID   int     `json:"to_district_id"`
	CodAmount      int64   `json:"cod_amount"`
	Weight         int     `json:"weight"`
	ServiceTypeID  int     `json:"service_type_id"`
	PaymentTypeID  int     `json:"payment_type_id"`
	RequiredNote   string  `json:"required_note"`
	Content        string  `json:"content"`
	Note           string  `json:"note"`
	InsuranceValue float64 `json:"insurance_value"`
}

type ghnCreateOrderData struct {
	OrderCode string `json:"order_code"`
	SortCode  string `json:"sort_code"`
	TotalFee  struct {
		Total float64 `json:"total"`
	} `json:"fee"`
	TotalFeeFlat float64 `json:"total_fee"`
}

// CreateOrder registers a delivery with GHN.
func (s *GHNService) CreateOrder(ctx context.Context, req CarrierOrderRequest) (*CarrierOrderResult, error) {
	wardCode := req.ToWardCode
	if wardCode == "" {
		wardCode = ghnFallbackWardCode
	}
	districtID := req.ToDistrictID
	if districtID == 0 {
		districtID = ghnFallbackDistrictID
	}
	weight := req.Weight
	if weight <= 0 {
		weight = 500
	}

	payload := ghnCreateOrderRequest{
		ToName:        req.ToName,
		ToPhone:       req.ToPhone,
		ToAddress:     req.ToAddress,
		ToWardCode:    wardCode,
		ToDistrictID:  districtID,
		CodAmount:     int64(req.CodAmount),
		Weight:        weight,
		ServiceTypeID: s.availableServiceType(ctx, districtID),
		PaymentTypeID: 1,
		RequiredNote:  "CHOXEMHANGKHONGTHU",
		Note:          req.Note,
	}

	data, err := s.post(ctx, "/v2/shipping-order/create", payload)
	if err != nil {
		return nil, err
	}

	var created ghnCreateOrderData
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("unmarshal GHN create response: %w", err)
	}

	fee := created.TotalFeeFlat
	if fee == 0 {
		fee = created.TotalFee.Total
	}

	return &CarrierOrderResult{
		OrderCode: created.OrderCode,
		SortCode:  created.SortCode,
		TotalFee:  fee,
	}, nil
}

type ghnOrderDetailData struct {
	OrderCode string `json:"order_code"`
	Status    string `json:"status"`
}

// OrderDetail polls the current carrier state of a delivery.
func (s *GHNService) OrderDetail(ctx context.Context, orderCode string) (*CarrierOrderDetail, error) {
	data, err := s.post(ctx, "/v2/shipping-order/detail", map[string]string{"order_code": orderCode})
	if err != nil {
		return nil, err
	}

	var detail ghnOrderDetailData
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("unmarshal GHN detail response: %w", err)
	}

	return &CarrierOrderDetail{
		OrderCode: detail.OrderCode,
		Status:    detail.Status,
		Raw:       data,
	}, nil
}

// CancelOrder asks GHN to drop a registered delivery.
func (s *GHNService) CancelOrder(ctx context.Context, orderCode string) error {
	_, err := s.post(ctx, "/v2/switch-status/cancel", map[string][]string{"order_codes": {orderCode}})
	return err
}

type ghnProvince struct {
	ProvinceID    int      `json:"ProvinceID"`
	ProvinceName  string   `json:"ProvinceName"`
	NameExtension []string `json:"NameExtension"`
}

type ghnDistrict struct {
	DistrictID    int      `json:"DistrictID"`
	DistrictName  string   `json:"DistrictName"`
	NameExtension []string `json:"NameExtension"`
}

type ghnWard struct {
	WardCode      string   `json:"WardCode"`
	WardName      string   `json:"WardName"`
	NameExtension []string `json:"NameExtension"`
}

// ResolveAddressCodes walks GHN's master data to turn typed region names
// into routing codes. Resolution is sequential: a district can only be
// looked up under a matched province, a ward only under a matched district.
// Whatever does not resolve stays zero; a partial result is still returned
// alongside the lookup error so the caller can use what it got.
func (s *GHNService) ResolveAddressCodes(ctx context.Context, q AddressQuery) (AddressCodes, error) {
	var codes AddressCodes
	if q.IsZero() {
		return codes, nil
	}

	data, err := s.get(ctx, "/master-data/province", nil)
	if err != nil {
		return codes, fmt.Errorf("fetch provinces: %w", err)
	}
	var provinces []ghnProvince
	if err := json.Unmarshal(data, &provinces); err != nil {
		return codes, fmt.Errorf("unmarshal GHN provinces: %w", err)
	}
	for i := range provinces {
		if regionNameMatches(q.Province, provinces[i].ProvinceName, provinces[i].NameExtension) {
			codes.ProvinceID = provinces[i].ProvinceID
			break
		}
	}
	if codes.ProvinceID == 0 {
		return codes, nil
	}

	data, err = s.get(ctx, "/master-data/district", url.Values{"province_id": {strconv.Itoa(codes.ProvinceID)}})
	if err != nil {
		return codes, fmt.Errorf("fetch districts: %w", err)
	}
	var districts []ghnDistrict
	if err := json.Unmarshal(data, &districts); err != nil {
		return codes, fmt.Errorf("unmarshal GHN districts: %w", err)
	}
	for i := range districts {
		if regionNameMatches(q.District, districts[i].DistrictName, districts[i].NameExtension) {
			codes.DistrictID = districts[i].DistrictID
			break
		}
	}
	if codes.DistrictID == 0 && len(districts) > 0 {
		// No usable district name; route through the province's first
		// district rather than giving up on the whole address.
		codes.DistrictID = districts[0].DistrictID
	}
	if codes.DistrictID == 0 {
		return codes, nil
	}

	data, err = s.get(ctx, "/master-data/ward", url.Values{"district_id": {strconv.Itoa(codes.DistrictID)}})
	if err != nil {
		return codes, fmt.Errorf("fetch wards: %w", err)
	}
	var wards []ghnWard
	if err := json.Unmarshal(data, &wards); err != nil {
		return codes, fmt.Errorf("unmarshal GHN wards: %w", err)
	}
	for i := range wards {
		if regionNameMatches(q.Ward, wards[i].WardName, wards[i].NameExtension) {
			codes.WardCode = wards[i].WardCode
			break
		}
	}
	if codes.WardCode == "" && len(wards) > 0 {
		codes.WardCode = wards[0].WardCode
	}

	return codes, nil
}

// regionFolder strips combining marks so accented and unaccented spellings
// of Vietnamese place names compare equal.
var regionFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeRegionName(name string) string {
	folded, _, err := transform.String(regionFolder, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	// The stroked d carries no combining mark and survives the fold.
	folded = strings.ReplaceAll(folded, "đ", "d")
	return strings.Join(strings.Fields(folded), " ")
}

// regionNameMatches compares a typed name against a master-data entry and
// its alternate spellings. Exact normalized match wins, then containment
// either way, so "Thu Duc" finds "Thành phố Thủ Đức".
func regionNameMatches(query, name string, extensions []string) bool {
	normalized := normalizeRegionName(query)
	if normalized == "" {
		return false
	}
	candidates := append([]string{name}, extensions...)
	for _, candidate := range candidates {
		if normalizeRegionName(candidate) == normalized {
			return true
		}
	}
	for _, candidate := range candidates {
		folded := normalizeRegionName(candidate)
		if folded == "" {
			continue
		}
		if strings.Contains(folded, normalized) || strings.Contains(normalized, folded) {
			return true
		}
	}
	return false
}

func (s *GHNService) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal GHN payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create GHN request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", s.token)
	req.Header.Set("ShopId", s.shopID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute GHN request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read GHN response: %w", err)
	}

	var envelope ghnEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("GHN request %s failed: status %d, body: %s", path, resp.StatusCode, string(respBody))
	}
	if envelope.Code != 200 {
		return nil, fmt.Errorf("GHN request %s failed: code %d, message: %s", path, envelope.Code, envelope.Message)
	}

	return envelope.Data, nil
}

// get issues an authenticated GET, used by the master-data endpoints.
func (s *GHNService) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	target := s.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create GHN request: %w", err)
	}
	req.Header.Set("Token", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute GHN request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read GHN response: %w", err)
	}

	var envelope ghnEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("GHN request %s failed: status %d, body: %s", path, resp.StatusCode, string(respBody))
	}
	if envelope.Code != 200 {
		return nil, fmt.Errorf("GHN request %s failed: code %d, message: %s", path, envelope.Code, envelope.Message)
	}

	return envelope.Data, nil
}
