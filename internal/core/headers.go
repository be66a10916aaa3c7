package core

import (
	"net/http"

	"github.com/RecoveryAshes/NewsRaker/internal/crawlers"
	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

// HeaderManager 管理HTTP请求头部
// 合并优先级: 系统默认 < 配置文件headers段 < 命令行-H参数
// 实现models.HeaderProvider接口
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header
}

// NewHeaderManager 创建头部管理器
// configHeaders来自配置文件的headers映射,cliHeaders为命令行"Name: Value"列表;
// 所有来源的头部在创建时统一验证,非法头部直接报错
func NewHeaderManager(configHeaders map[string]string, cliHeaders []string) (*HeaderManager, error) {
	config := make(http.Header)
	for name, value := range configHeaders {
		config.Set(name, value)
	}

	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}

	hm := &HeaderManager{
		defaults: defaultHeaders(),
		config:   config,
		cli:      cli,
	}

	if err := utils.ValidateHeaders(hm.config); err != nil {
		return nil, err
	}
	if err := utils.ValidateHeaders(hm.cli); err != nil {
		return nil, err
	}

	return hm, nil
}

// GetHeaders 返回合并后的有效头部
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	merged := make(http.Header)

	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range layer {
			if len(values) > 0 {
				merged.Set(name, values[0])
			}
		}
	}

	return merged, nil
}

// defaultHeaders 系统默认头部
func defaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", crawlers.DefaultUserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")
	return h
}
