package feeds

import "YiJinJing/internal/domain/models"

var newsPools = map[models.Language][]string{
	models.LangCN: {
		"[快讯] 寒武纪 (688256): 发布的最新一代云端AI芯片性能测试超预期，算力利用率提升 40%",
		"中兴通讯 (000063): 6G 关键技术取得突破，发布全场景智算网络解决方案",
		"比亚迪 (002594): 发布新一代刀片电池技术，主要参数优于预期，海外订单激增",
		"[预警] 美联储会议纪要显示加息预期增强，全球流动性承压",
		"监管动态: 某 DeFi 协议遭受闪电贷攻击，跨链桥风险敞口扩大",
		"宏观: 人民币兑美元汇率波动加剧，触发 MEHGT 波动率阈值",
		"[公告] 腾讯控股 (0700.HK): 回购 100 万股，彰显管理层信心",
		"半导体: 中芯国际获 12 英寸晶圆代工新订单，产能利用率回升",
		"[快讯] 离岸人民币收复 7.20 关口，跨境资本流动保持平稳",
		"大宗商品: 黄金现货突破 2100 美元/盎司，避险情绪升温",
		"AI 政策: 欧盟通过《人工智能法案》，生成式 AI 面临合规大考",
		"[预警] 某头部房企债务重组方案遇阻，债券价格大幅波动",
		"寒武纪: 获多家头部大模型厂商算力集群订单，涉及金额超 5 亿元",
		"原油: OPEC+ 宣布延长自愿减产协议至二季度末",
		"光伏: 通威股份宣布新型电池组件转换效率刷新世界纪录",
		"数字货币: 比特币哈希率创历史新高，减半预期发酵",
		"中兴通讯: 联合运营商完成 5G-A 通感一体化基站验证",
		"美债: 10 年期国债收益率逼近 4.5% 阻力位",
	},
	models.LangEN: {
		"[Flash] Cambricon (688256): New gen cloud AI chip performance exceeds expectations, utilization up 40%",
		"ZTE (000063): Breakthrough in 6G key technologies, releases intelligent computing network solution",
		"BYD (002594): Releases new generation Blade Battery, exceeding expectations, overseas orders surge",
		"[Alert] Fed Minutes: Rate hike expectations rise, global liquidity under pressure",
		"Regulation: DeFi protocol suffers flash loan attack, bridge risk exposure widens",
		"Macro: RMB/USD volatility intensifies, triggering MEHGT threshold",
		"[Notice] Tencent (0700.HK): Repurchases 1M shares, signaling management confidence",
		"Semiconductors: SMIC secures new 12-inch wafer orders, utilization rising",
		"[Flash] Offshore RMB reclaims 7.20 level, cross-border flows stable",
		"Commodities: Spot Gold breaks $2100/oz, safe-haven sentiment rising",
		"AI Policy: EU passes AI Act, generative AI faces compliance tests",
		"[Alert] Major property developer debt restructuring stalled, bonds volatile",
		"Cambricon: Secures computing cluster orders from major LLM vendors exceeding 500M CNY",
		"Crude Oil: OPEC+ extends voluntary cuts through Q2",
		"Solar: Tongwei announces new cell efficiency world record",
		"Crypto: Bitcoin hash rate hits all-time high ahead of halving",
		"ZTE: Completes 5G-A sensing-communication integration verification with operators",
		"Treasuries: 10-year yield approaches 4.5% resistance",
	},
}

var newsOutlets = map[models.Language][]string{
	models.LangCN: {"路透社", "彭博社", "财新", "华尔街日报"},
	models.LangEN: {"Reuters", "Bloomberg", "WSJ", "FT"},
}

var logTemplates = map[models.Language][]string{
	models.LangCN: {
		"HGTConv 层前向传播完成 (14ms)",
		"实体对齐: TMKG 节点 #8821 匹配源 ext_source_04",
		"时序切片: 窗口 [t-10, t] 处理完毕",
		"检测到风险事件 (区块 #204): 波动率激增",
		"FinEX: 抽取三元组 {实体: '宁德时代', 关系: '供应商', 对象: '特斯拉'}",
		"MEHGT: 边注意力权重更新 Alpha: 0.85",
		"反向传播: 梯度范数 0.042 - 收敛稳定",
		"推理引擎: 生成信号 -> 买入 (置信度 0.92)",
		"内存回收: 释放 402MB GPU 显存",
		"知识图谱: 关系推理 '共同投资' 置信度 0.88",
		"系统监控: GPU 温度 72°C - 风扇转速 45%",
	},
	models.LangEN: {
		"HGTConv Layer Forward Pass Complete (14ms)",
		"Entity Alignment: TMKG Node #8821 matches ext_source_04",
		"Temporal Slicing: Window [t-10, t] processed",
		"Risk Event Detected (Block #204): Volatility Spike",
		"FinEX: Extracted Triplet {Entity: 'CATL', Relation: 'Supplier', Object: 'Tesla'}",
		"MEHGT: Edge Attention Weight Update Alpha: 0.85",
		"Backprop: Gradient Norm 0.042 - Convergence Stable",
		"Inference Engine: Signal Generated -> BUY (Conf 0.92)",
		"Memory GC: Freed 402MB GPU VRAM",
		"Knowledge Graph: Relation Reasoning 'Co-invest' Conf 0.88",
		"System Monitor: GPU Temp 72°C - Fan Speed 45%",
	},
}

type radarSeed struct {
	subject string
	value   float64
}

var radarSeeds = map[models.Language][]radarSeed{
	models.LangCN: {
		{"实体抽取", 120}, {"关系推理", 98}, {"事件对齐", 86},
		{"风险预测", 99}, {"多模态", 85}, {"低时延", 65},
	},
	models.LangEN: {
		{"Extraction", 120}, {"Reasoning", 98}, {"Alignment", 86},
		{"Risk Pred", 99}, {"Multimodal", 85}, {"Latency", 65},
	},
}

// SystemTasks rotate in the header node indicator.
var SystemTasks = []string{
	"NVIDIA A100 (High Load)",
	"Allocating Tensor Cores...",
	"Syncing On-Chain Ledger...",
	"Optimizing MEHGT Gradients...",
	"Verifying Block Hashes...",
}

// LoadingMessages are shown by the splash screen in order.
var LoadingMessages = []string{
	"Loading Weights: SFT_TF-14B.sh...",
	"Initializing MEHGT-LKG: han_conv_edge_attr3.py...",
	"Building Hetero Graph: HeteroG_eventall2.0.ipynb...",
	"Connecting TMKG Knowledge Base...",
	"Calibrating FinEX Extraction Matrix...",
	"Verifying Node: NVIDIA A100 [Simulated]...",
}

func pool[T any](m map[models.Language][]T, lang models.Language) []T {
	if p, ok := m[lang]; ok {
		return p
	}
	return m[models.LangCN]
}
