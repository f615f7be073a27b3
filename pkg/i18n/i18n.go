package i18n

import (
	"reflect"
	"strings"

	"YiJinJing/internal/domain/models"
)

// Labels holds every translatable dashboard string
type Labels struct {
	// Header
	AppTitle string `json:"appTitle"`
	Running  string `json:"running"`
	Paused   string `json:"paused"`
	Node     string `json:"node"`
	Latency  string `json:"latency"`

	// Chart
	ChartTitle    string `json:"chartTitle"`
	LiveInference string `json:"liveInference"`
	Standby       string `json:"standby"`
	AISignal      string `json:"aiSignal"`
	Action        string `json:"action"`
	BuyHold       string `json:"buyHold"`
	ReduceShort   string `json:"reduceShort"`

	// Portfolio
	AssetAccount string `json:"assetAccount"`
	TotalAsset   string `json:"totalAsset"`
	TodayPnl     string `json:"todayPnl"`
	SmartFollow  string `json:"smartFollow"`
	TakeProfit   string `json:"takeProfit"`
	Executing    string `json:"executing"`
	Holding      string `json:"holding"`
	Clearing     string `json:"clearing"`
	SystemOff    string `json:"systemOff"`

	// FinEX
	FinexTitle string `json:"finexTitle"`
	NlpStream  string `json:"nlpStream"`

	// Panels
	KnowledgeGraph string `json:"knowledgeGraph"`
	Heatmap        string `json:"heatmap"`
	Logs           string `json:"logs"`

	// Asset detail
	AssetPerspective   string `json:"assetPerspective"`
	CumulativeNetValue string `json:"cumulativeNetValue"`
	AssetAllocation    string `json:"assetAllocation"`
	RecentYields       string `json:"recentYields"`

	// Settlement
	SettlementComplete string `json:"settlementComplete"`
	Strategy           string `json:"strategy"`
	Principal          string `json:"principal"`
	RealizedPnl        string `json:"realizedPnl"`
	TxHash             string `json:"txHash"`
	Archive            string `json:"archive"`
	Share              string `json:"share"`
	Download           string `json:"download"`
}

// Chinese labels
var labelsCN = Labels{
	AppTitle: "易金经",
	Running:  "运行中",
	Paused:   "系统待机",
	Node:     "算力节点",
	Latency:  "端到端时延",

	ChartTitle:    "MEHGT-LKG 趋势预测",
	LiveInference: "实时推理中",
	Standby:       "系统待机",
	AISignal:      "AI 建议",
	Action:        "建议操作",
	BuyHold:       "买入 / 持有",
	ReduceShort:   "减仓 / 观望",

	AssetAccount: "智能投顾账户",
	TotalAsset:   "总资产估值",
	TodayPnl:     "今日收益",
	SmartFollow:  "一键智能跟投",
	TakeProfit:   "止盈卖出",
	Executing:    "执行中...",
	Holding:      "已持仓",
	Clearing:     "清算中...",
	SystemOff:    "请先启动系统",

	FinexTitle: "FinEX · 舆情知识抽取流",
	NlpStream:  "NLP 实时流",

	KnowledgeGraph: "知识图谱拓扑",
	Heatmap:        "策略回测热力图",
	Logs:           "系统实时日志",

	AssetPerspective:   "资产透视 · 收益归因分析",
	CumulativeNetValue: "累计净值曲线 (近30日)",
	AssetAllocation:    "资产分布",
	RecentYields:       "近期收益记录",

	SettlementComplete: "交易交割成功",
	Strategy:           "执行策略",
	Principal:          "投入本金",
	RealizedPnl:        "实现收益",
	TxHash:             "交易哈希",
	Archive:            "确认归档",
	Share:              "分享战绩",
	Download:           "下载回单",
}

// English labels
var labelsEN = Labels{
	AppTitle: "Yi Jin Jing",
	Running:  "SYSTEM ONLINE",
	Paused:   "SYSTEM PAUSED",
	Node:     "Node",
	Latency:  "Latency",

	ChartTitle:    "MEHGT-LKG Prediction",
	LiveInference: "LIVE INFERENCE",
	Standby:       "STANDBY",
	AISignal:      "AI Signal",
	Action:        "Action",
	BuyHold:       "Buy / Hold",
	ReduceShort:   "Reduce / Short",

	AssetAccount: "Robo-Advisor Account",
	TotalAsset:   "Total Assets",
	TodayPnl:     "Today's P&L",
	SmartFollow:  "Smart Follow",
	TakeProfit:   "Take Profit",
	Executing:    "Executing...",
	Holding:      "Holding",
	Clearing:     "Clearing...",
	SystemOff:    "System Offline",

	FinexTitle: "FinEX Knowledge Extraction",
	NlpStream:  "NLP Stream",

	KnowledgeGraph: "Knowledge Graph Topology",
	Heatmap:        "Strategy Backtest Heatmap",
	Logs:           "System Real-time Logs",

	AssetPerspective:   "Asset Analysis & Attribution",
	CumulativeNetValue: "Cumulative Net Value (30D)",
	AssetAllocation:    "Asset Allocation",
	RecentYields:       "Recent Yields",

	SettlementComplete: "Transaction Settled",
	Strategy:           "Strategy",
	Principal:          "Principal",
	RealizedPnl:        "Realized P&L",
	TxHash:             "Tx Hash",
	Archive:            "Archive",
	Share:              "Share",
	Download:           "Download",
}

// For returns the label table of lang. Unknown languages get Chinese.
func For(lang models.Language) *Labels {
	if lang == models.LangEN {
		return &labelsEN
	}
	return &labelsCN
}

// Get returns a label by its JSON key or Go field name, or the key itself when unknown
func Get(lang models.Language, key string) string {
	v := reflect.ValueOf(For(lang)).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == key || strings.Split(f.Tag.Get("json"), ",")[0] == key {
			return v.Field(i).String()
		}
	}
	return key
}
