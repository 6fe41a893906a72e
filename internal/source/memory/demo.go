package memory

import "spendboard/internal/source"

// DemoTables returns a small, internally consistent sample of the three extracts.
func DemoTables() map[source.Table][][]string {
	return map[source.Table][][]string{
		source.FactoryTable: {
			{"Business Unit", "2025年预测采购额", "2024年入库金额", "增长金额", "增长率"},
			{"天津铜盟", "520,000,000", "461,000,000", "59,000,000", "13%"},
			{"天津汇风", "136,000,000", "114,000,000", "22,000,000", "19%"},
			{"苏州铜盟", "228,000,000", "251,000,000", "-23,000,000", "-9%"},
			{"合计", "884,000,000", "826,000,000", "58,000,000", "7%"},
		},
		source.SupplierTable: {
			{"供应商", "Category", "Sub Category", "2024合计入库金额", "2025合计预算金额", "增长金额", "增长率",
				"2024汇风入库金额", "2024铜盟入库金额", "2024苏州入库金额", "2025汇风预算金额", "2025铜盟预算金额", "2025苏州预算金额"},
			{"江铜贸易", "Copper &Aluminum", "铜杆", "180,000,000", "205,000,000", "25,000,000", "13.9%", "20,000,000", "120,000,000", "40,000,000", "25,000,000", "140,000,000", "40,000,000"},
			{"海亮金属", "Copper &Aluminum", "铜管", "95,000,000", "88,000,000", "-7,000,000", "-7.4%", "0", "60,000,000", "35,000,000", "0", "58,000,000", "30,000,000"},
			{"南山铝业", "Copper &Aluminum", "铝板", "60,000,000", "66,000,000", "6,000,000", "10%", "10,000,000", "30,000,000", "20,000,000", "12,000,000", "34,000,000", "20,000,000"},
			{"宝钢股份", "Steel", "冷轧板", "70,000,000", "64,000,000", "-6,000,000", "-8.6%", "15,000,000", "35,000,000", "20,000,000", "14,000,000", "32,000,000", "18,000,000"},
			{"鞍钢国贸", "Steel", "镀锌板", "25,000,000", "12,000,000", "-13,000,000", "-52%", "5,000,000", "10,000,000", "10,000,000", "2,000,000", "5,000,000", "5,000,000"},
			{"立讯精密", "Electrical &Electronic", "接线盒", "30,000,000", "42,000,000", "12,000,000", "40%", "10,000,000", "15,000,000", "5,000,000", "14,000,000", "22,000,000", "6,000,000"},
			{"正泰电器", "Electrical &Electronic", "继电器", "22,000,000", "9,000,000", "-13,000,000", "-59.1%", "2,000,000", "12,000,000", "8,000,000", "1,000,000", "5,000,000", "3,000,000"},
			{"汇川技术", "Electrical &Electronic", "变频器", "8,000,000", "14,000,000", "6,000,000", "75%", "1,000,000", "5,000,000", "2,000,000", "2,000,000", "9,000,000", "3,000,000"},
			{"拓普集团", "Assembly &Mechanical Parts", "结构件", "40,000,000", "52,000,000", "12,000,000", "30%", "8,000,000", "22,000,000", "10,000,000", "10,000,000", "30,000,000", "12,000,000"},
			{"中鼎密封", "Assembly &Mechanical Parts", "密封件", "12,000,000", "11,000,000", "-1,000,000", "-8.3%", "2,000,000", "6,000,000", "4,000,000", "2,000,000", "6,000,000", "3,000,000"},
			{"回天新材", "Chemicals", "导热脂", "4,000,000", "7,500,000", "3,500,000", "87.5%", "500,000", "2,500,000", "1,000,000", "1,000,000", "5,000,000", "1,500,000"},
			{"德邦科技", "Chemicals", "胶粘剂", "6,000,000", "0", "-6,000,000", "-100%", "1,000,000", "3,000,000", "2,000,000", "0", "0", "0"},
			{"新宙邦", "Chemicals", "绝缘漆", "0", "3,000,000", "3,000,000", "", "0", "0", "0", "500,000", "2,000,000", "500,000"},
		},
		source.CategoryTable: {
			{"Category", "Sub category", "2024年Spend", "2025年Spend", "增长金额", "增长率"},
			{"Copper &Aluminum", "铜杆", "180,000,000", "205,000,000", "25,000,000", "13.9%"},
			{"Copper &Aluminum", "铜管", "95,000,000", "88,000,000", "-7,000,000", "-7.4%"},
			{"Copper &Aluminum", "铝板", "60,000,000", "66,000,000", "6,000,000", "10%"},
			{"Steel", "冷轧板", "70,000,000", "64,000,000", "-6,000,000", "-8.6%"},
			{"Steel", "镀锌板", "25,000,000", "12,000,000", "-13,000,000", "-52%"},
			{"Electrical &Electronic", "接线盒", "30,000,000", "42,000,000", "12,000,000", "40%"},
			{"Electrical &Electronic", "继电器", "22,000,000", "9,000,000", "-13,000,000", "-59.1%"},
			{"Electrical &Electronic", "变频器", "8,000,000", "14,000,000", "6,000,000", "75%"},
			{"Assembly &Mechanical Parts", "结构件", "40,000,000", "52,000,000", "12,000,000", "30%"},
			{"Assembly &Mechanical Parts", "密封件", "12,000,000", "11,000,000", "-1,000,000", "-8.3%"},
			{"Chemicals", "导热脂", "4,000,000", "7,500,000", "3,500,000", "87.5%"},
			{"Chemicals", "胶粘剂", "6,000,000", "0", "-6,000,000", "-100%"},
			{"Chemicals", "绝缘漆", "0", "3,000,000", "3,000,000", "inf%"},
		},
	}
}
