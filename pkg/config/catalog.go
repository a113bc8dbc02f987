package config

func DefaultCatalog() Catalog {
	return Catalog{
		PriceOptions: []string{"〜500円", "〜1000円", "〜2000円", "5000円以上"},
		Schools: []string{
			"北杜高等学校",
			"韮崎高等学校",
			"甲府第一高等学校",
			"甲府西高等学校",
			"甲府南高等学校",
			"甲府東高等学校",
			"甲府工業高等学校",
			"甲府城西高等学校",
			"甲府昭和高等学校",
			"農林高等学校",
			"巨摩高等学校",
			"白根高等学校",
			"青洲高等学校",
			"身延高等学校",
			"笛吹高等学校",
			"日川高等学校",
			"山梨高等学校",
			"塩山高等学校",
			"都留高等学校",
			"中央高等学校",
			"甲府商業高等学校",
			"甲陵高等学校",
			"甲斐清和高等学校",
			"駿台甲府高等学校",
			"山梨学院高等学校",
			"東海大学付属甲府高等学校",
			"日本航空高等学校",
		},
		Genders: []string{"男性", "女性", "その他"},
		FirstNames: []string{
			"Alex", "Ben", "Chris", "Dana", "Eli", "Finn", "Gaby", "Hael", "Ira", "Jean",
			"Kim", "Lee", "Max", "Nat", "Oli", "Pat", "Quin", "Ramy", "Sam", "Teo",
			"Uli", "Val", "Wes", "Xei", "Yael", "Ziv",
		},
		LastNames: []string{
			"Smith", "Jones", "Williams", "Brown", "Davis", "Miller", "Wilson", "Moore",
			"Taylor", "Anderson", "Thomas", "Jackson", "White", "Harris", "Martin",
			"Thompson", "Garcia", "Martinez", "Robinson", "Clark",
		},
		MapDomains: []string{
			"www.google.com", "google.com", "maps.google.com", "maps.app.goo.gl", "goo.gl",
		},
	}
}
