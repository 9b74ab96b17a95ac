package constants

// CountryNames maps country codes to display names. Aggregate regions use
// the OWID_ prefix; the world series is stored under DefaultCountry.
var CountryNames = map[string]string{
	"AFG":       "Afghanistan",
	"OWID_AFR":  "Africa",
	"ALB":       "Albania",
	"DZA":       "Algeria",
	"ASM":       "American Samoa",
	"AGO":       "Angola",
	"ATG":       "Antigua and Barbuda",
	"ARG":       "Argentina",
	"ARM":       "Armenia",
	"ABW":       "Aruba",
	"AUS":       "Australia",
	"AUT":       "Austria",
	"AZE":       "Azerbaijan",
	"BHS":       "Bahamas",
	"BHR":       "Bahrain",
	"BGD":       "Bangladesh",
	"BRB":       "Barbados",
	"BLR":       "Belarus",
	"BEL":       "Belgium",
	"BLZ":       "Belize",
	"BEN":       "Benin",
	"BMU":       "Bermuda",
	"BTN":       "Bhutan",
	"BOL":       "Bolivia",
	"BIH":       "Bosnia and Herzegovina",
	"BWA":       "Botswana",
	"BRA":       "Brazil",
	"VGB":       "British Virgin Islands",
	"BRN":       "Brunei",
	"BGR":       "Bulgaria",
	"BFA":       "Burkina Faso",
	"BDI":       "Burundi",
	"KHM":       "Cambodia",
	"CMR":       "Cameroon",
	"CAN":       "Canada",
	"CPV":       "Cape Verde",
	"CYM":       "Cayman Islands",
	"CAF":       "Central African Republic",
	"TCD":       "Chad",
	"CHL":       "Chile",
	"CHN":       "China",
	"COL":       "Colombia",
	"COM":       "Comoros",
	"COG":       "Congo",
	"COK":       "Cook Islands",
	"CRI":       "Costa Rica",
	"CIV":       "Cote d'Ivoire",
	"HRV":       "Croatia",
	"CUB":       "Cuba",
	"CYP":       "Cyprus",
	"CZE":       "Czechia",
	"COD":       "Democratic Republic of Congo",
	"DNK":       "Denmark",
	"DJI":       "Djibouti",
	"DMA":       "Dominica",
	"DOM":       "Dominican Republic",
	"ECU":       "Ecuador",
	"EGY":       "Egypt",
	"SLV":       "El Salvador",
	"GNQ":       "Equatorial Guinea",
	"ERI":       "Eritrea",
	"EST":       "Estonia",
	"SWZ":       "Eswatini",
	"ETH":       "Ethiopia",
	"OWID_EUR":  "Europe",
	"OWID_EU27": "European Union (27)",
	"FRO":       "Faeroe Islands",
	"FLK":       "Falkland Islands",
	"FJI":       "Fiji",
	"FIN":       "Finland",
	"FRA":       "France",
	"GUF":       "French Guiana",
	"PYF":       "French Polynesia",
	"GAB":       "Gabon",
	"GMB":       "Gambia",
	"GEO":       "Georgia",
	"DEU":       "Germany",
	"GHA":       "Ghana",
	"GRC":       "Greece",
	"GRL":       "Greenland",
	"GRD":       "Grenada",
	"GLP":       "Guadeloupe",
	"GUM":       "Guam",
	"GTM":       "Guatemala",
	"GIN":       "Guinea",
	"GNB":       "Guinea-Bissau",
	"GUY":       "Guyana",
	"HTI":       "Haiti",
	"HND":       "Honduras",
	"HKG":       "Hong Kong",
	"HUN":       "Hungary",
	"ISL":       "Iceland",
	"IND":       "India",
	"IDN":       "Indonesia",
	"IRN":       "Iran",
	"IRQ":       "Iraq",
	"IRL":       "Ireland",
	"ISR":       "Israel",
	"ITA":       "Italy",
	"JAM":       "Jamaica",
	"JPN":       "Japan",
	"JOR":       "Jordan",
	"KAZ":       "Kazakhstan",
	"KEN":       "Kenya",
	"KIR":       "Kiribati",
	"OWID_KOS":  "Kosovo",
	"KWT":       "Kuwait",
	"KGZ":       "Kyrgyzstan",
	"LAO":       "Laos",
	"LVA":       "Latvia",
	"LBN":       "Lebanon",
	"LSO":       "Lesotho",
	"LBR":       "Liberia",
	"LBY":       "Libya",
	"LTU":       "Lithuania",
	"LUX":       "Luxembourg",
	"MAC":       "Macao",
	"MDG":       "Madagascar",
	"MWI":       "Malawi",
	"MYS":       "Malaysia",
	"MDV":       "Maldives",
	"MLI":       "Mali",
	"MLT":       "Malta",
	"MTQ":       "Martinique",
	"MRT":       "Mauritania",
	"MUS":       "Mauritius",
	"MEX":       "Mexico",
	"FSM":       "Micronesia (country)",
	"MDA":       "Moldova",
	"MNG":       "Mongolia",
	"MNE":       "Montenegro",
	"MSR":       "Montserrat",
	"MAR":       "Morocco",
	"MOZ":       "Mozambique",
	"MMR":       "Myanmar",
	"NAM":       "Namibia",
	"NRU":       "Nauru",
	"NPL":       "Nepal",
	"NLD":       "Netherlands",
	"ANT":       "Netherlands Antilles",
	"NCL":       "New Caledonia",
	"NZL":       "New Zealand",
	"NIC":       "Nicaragua",
	"NER":       "Niger",
	"NGA":       "Nigeria",
	"NIU":       "Niue",
	"PRK":       "North Korea",
	"MKD":       "North Macedonia",
	"MNP":       "Northern Mariana Islands",
	"NOR":       "Norway",
	"OMN":       "Oman",
	"PAK":       "Pakistan",
	"PSE":       "Palestine",
	"PAN":       "Panama",
	"PNG":       "Papua New Guinea",
	"PRY":       "Paraguay",
	"PER":       "Peru",
	"PHL":       "Philippines",
	"POL":       "Poland",
	"PRT":       "Portugal",
	"PRI":       "Puerto Rico",
	"QAT":       "Qatar",
	"REU":       "Reunion",
	"ROU":       "Romania",
	"RUS":       "Russia",
	"RWA":       "Rwanda",
	"SHN":       "Saint Helena",
	"KNA":       "Saint Kitts and Nevis",
	"LCA":       "Saint Lucia",
	"SPM":       "Saint Pierre and Miquelon",
	"VCT":       "Saint Vincent and the Grenadines",
	"WSM":       "Samoa",
	"STP":       "Sao Tome and Principe",
	"SAU":       "Saudi Arabia",
	"SEN":       "Senegal",
	"SRB":       "Serbia",
	"SYC":       "Seychelles",
	"SLE":       "Sierra Leone",
	"SGP":       "Singapore",
	"SVK":       "Slovakia",
	"SVN":       "Slovenia",
	"SLB":       "Solomon Islands",
	"SOM":       "Somalia",
	"ZAF":       "South Africa",
	"KOR":       "South Korea",
	"SSD":       "South Sudan",
	"ESP":       "Spain",
	"LKA":       "Sri Lanka",
	"SDN":       "Sudan",
	"SUR":       "Suriname",
	"SWE":       "Sweden",
	"CHE":       "Switzerland",
	"SYR":       "Syria",
	"TWN":       "Taiwan",
	"TJK":       "Tajikistan",
	"TZA":       "Tanzania",
	"THA":       "Thailand",
	"TLS":       "Timor",
	"TGO":       "Togo",
	"TON":       "Tonga",
	"TTO":       "Trinidad and Tobago",
	"TUN":       "Tunisia",
	"TUR":       "Turkey",
	"TKM":       "Turkmenistan",
	"TCA":       "Turks and Caicos Islands",
	"TUV":       "Tuvalu",
	"UGA":       "Uganda",
	"UKR":       "Ukraine",
	"ARE":       "United Arab Emirates",
	"GBR":       "United Kingdom",
	"USA":       "United States",
	"VIR":       "United States Virgin Islands",
	"URY":       "Uruguay",
	"UZB":       "Uzbekistan",
	"VUT":       "Vanuatu",
	"VEN":       "Venezuela",
	"VNM":       "Vietnam",
	"ESH":       "Western Sahara",
	"OWID_WRL":  "World",
	"YEM":       "Yemen",
	"ZMB":       "Zambia",
	"ZWE":       "Zimbabwe",
}

// CountryName returns the display name for a country code, or the code itself.
func CountryName(code string) string {
	if code == DefaultCountry {
		return CountryNames["OWID_WRL"]
	}
	if name, ok := CountryNames[code]; ok {
		return name
	}
	return code
}

// KnownCountry reports whether code names a country or region.
func KnownCountry(code string) bool {
	if code == DefaultCountry {
		return true
	}
	_, ok := CountryNames[code]
	return ok
}
