package salling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// ==================== 错误定义 ====================

var (
	// ErrStoreNotFound 平台侧不认识该门店 ID
	ErrStoreNotFound = errors.New("salling: store not found")
	// ErrUnauthorized API key 无效
	ErrUnauthorized = errors.New("salling: invalid api key")
	// ErrRateLimited 触发平台限流
	ErrRateLimited = errors.New("salling: rate limit exceeded")
)

// ==================== 客户端 ====================

const (
	defaultBaseURL = "https://api.sallinggroup.com"
	storesPerPage  = 100
)

// 要拉取的品牌（目录同步范围）
var wantedBrands = []string{"netto", "bilka", "foetex"}

// FeedClient 外部清仓数据源的边界接口
// 同步编排器只依赖该接口，测试用假实现替换
type FeedClient interface {
	FetchClearances(ctx context.Context, sallingStoreID string) ([]OfferRecord, error)
	FetchStores(ctx context.Context) ([]StoreRecord, error)
}

// Client Salling 开放平台客户端
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient 创建客户端
// apiKey: 平台颁发的 Bearer key；baseURL 为空时使用生产地址
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &Client{
		http: httpClient,
		// 平台限流较严（429），出站统一限到 5 req/s
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// FetchClearances 拉取指定门店当前的清仓商品快照
func (c *Client) FetchClearances(ctx context.Context, sallingStoreID string) ([]OfferRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var res clearanceResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&res).
		Get("/v1/food-waste/" + sallingStoreID)
	if err != nil {
		return nil, fmt.Errorf("请求中断: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	records := make([]OfferRecord, 0, len(res.Clearances))
	for i := range res.Clearances {
		rec, err := parseClearance(&res.Clearances[i])
		if err != nil {
			// 单条解析失败只跳过，不中断整个快照
			log.Printf("[Salling] 门店 %s 第 %d 条清仓记录解析失败: %v", sallingStoreID, i, err)
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

// FetchStores 分页拉取全部目标品牌的门店目录
func (c *Client) FetchStores(ctx context.Context) ([]StoreRecord, error) {
	var all []StoreRecord
	for _, brand := range wantedBrands {
		stores, err := c.fetchStoresForBrand(ctx, brand)
		if err != nil {
			return nil, fmt.Errorf("拉取品牌 %s 门店失败: %w", brand, err)
		}
		all = append(all, stores...)
	}
	return all, nil
}

func (c *Client) fetchStoresForBrand(ctx context.Context, brand string) ([]StoreRecord, error) {
	var brandStores []StoreRecord

	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var nodes []storeNode
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"brand":    brand,
				"per_page": fmt.Sprintf("%d", storesPerPage),
				"page":     fmt.Sprintf("%d", page),
			}).
			SetResult(&nodes).
			Get("/v2/stores")
		if err != nil {
			return nil, fmt.Errorf("请求中断: %w", err)
		}
		if err := checkStatus(resp); err != nil {
			return nil, err
		}

		for i := range nodes {
			rec, err := parseStore(&nodes[i])
			if err != nil {
				log.Printf("[Salling] 门店记录解析失败: %v", err)
				continue
			}
			brandStores = append(brandStores, *rec)
		}

		// 不足一页说明到底了
		if len(nodes) < storesPerPage {
			break
		}
	}
	return brandStores, nil
}

// ==================== 响应校验与解析 ====================

func checkStatus(resp *resty.Response) error {
	switch resp.StatusCode() {
	case 200:
		return nil
	case 404:
		return ErrStoreNotFound
	case 401:
		return ErrUnauthorized
	case 429:
		return ErrRateLimited
	default:
		return fmt.Errorf("salling: API 异常 [%d]: %s", resp.StatusCode(), resp.String())
	}
}

func parseClearance(node *clearanceNode) (*OfferRecord, error) {
	if node.Product == nil {
		return nil, errors.New("缺少 product 块")
	}

	rec := &OfferRecord{
		Ean:  strings.TrimSpace(node.Product.Ean),
		Name: strings.TrimSpace(node.Product.Description),
	}

	if node.Offer != nil {
		o := node.Offer
		// 价格四字段必须齐全，缺一按无价格处理，由对账层丢弃
		if o.OriginalPrice != nil && o.NewPrice != nil && o.Discount != nil && o.PercentDiscount != nil {
			rec.Price = &PriceBlock{
				OriginalPrice:   *o.OriginalPrice,
				NewPrice:        *o.NewPrice,
				Discount:        *o.Discount,
				PercentDiscount: *o.PercentDiscount,
			}
		}

		unit := StockUnitFromFeed(o.StockUnit)
		rec.Stock = &StockBlock{Quantity: o.Stock, Unit: unit}

		timing := &TimeBlock{}
		if t, err := time.Parse(time.RFC3339, o.StartTime); err == nil {
			timing.StartTime = &t
		}
		if t, err := time.Parse(time.RFC3339, o.EndTime); err == nil {
			timing.EndTime = &t
		}
		if t, err := time.Parse(time.RFC3339, o.LastUpdate); err == nil {
			timing.LastUpdated = &t
		}
		rec.Timing = timing
	}

	if node.Product.Categories != nil {
		da := strings.TrimSpace(node.Product.Categories.Da)
		en := strings.TrimSpace(node.Product.Categories.En)
		rec.Categories = []CategoryDescriptor{{
			NameDa: lastSegment(da),
			NameEn: lastSegment(en),
			PathDa: da,
			PathEn: en,
		}}
	}

	return rec, nil
}

func parseStore(node *storeNode) (*StoreRecord, error) {
	if node.ID == "" {
		return nil, errors.New("缺少门店 id")
	}
	if node.Address == nil {
		return nil, fmt.Errorf("门店 %s 缺少地址", node.ID)
	}

	rec := &StoreRecord{
		SallingStoreID: node.ID,
		Name:           node.Name,
		Brand:          node.Brand,
		Street:         node.Address.Street,
		ZipCode:        node.Address.Zip,
		City:           node.Address.City,
	}
	// coordinates 为 [经度, 纬度]
	if len(node.Coordinates) >= 2 {
		rec.Longitude = node.Coordinates[0]
		rec.Latitude = node.Coordinates[1]
	}
	return rec, nil
}

// StockUnitFromFeed 库存单位归一化，未知单位按 each 处理
func StockUnitFromFeed(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "kg") {
		return "kg"
	}
	return "each"
}

// lastSegment 取 ">" 分隔路径的最后一段作为短名称
func lastSegment(path string) string {
	if idx := strings.LastIndex(path, ">"); idx >= 0 {
		return strings.TrimSpace(path[idx+1:])
	}
	return strings.TrimSpace(path)
}
