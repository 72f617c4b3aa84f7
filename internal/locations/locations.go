// Package locations содержит справочник обслуживаемых городов и районов.
package locations

import "sort"

// Directory хранит неизменяемое после создания соответствие город → районы.
type Directory struct {
	byCity map[string][]string
	cities []string
}

// New создаёт справочник по переданной таблице.
func New(table map[string][]string) *Directory {
	d := &Directory{
		byCity: make(map[string][]string, len(table)),
		cities: make([]string, 0, len(table)),
	}
	for city, districts := range table {
		d.byCity[city] = append([]string(nil), districts...)
		d.cities = append(d.cities, city)
	}
	sort.Strings(d.cities)
	return d
}

// Default возвращает справочник городов, в которых работает платформа.
func Default() *Directory {
	return New(map[string][]string{
		"İstanbul":  {"Kadıköy", "Beşiktaş", "Üsküdar", "Fatih", "Bakırköy", "Şişli", "Beyoğlu", "Maltepe", "Ataşehir", "Kartal", "Pendik", "Tuzla", "Sarıyer", "Beylikdüzü", "Esenyurt", "Küçükçekmece", "Bağcılar", "Bahçelievler", "Güngören", "Esenler"},
		"Ankara":    {"Çankaya", "Keçiören", "Mamak", "Yenimahalle", "Etimesgut", "Sincan", "Altındağ", "Pursaklar", "Gölbaşı", "Polatlı"},
		"İzmir":     {"Konak", "Karşıyaka", "Bornova", "Buca", "Bayraklı", "Çiğli", "Gaziemir", "Balçova", "Narlıdere", "Karabağlar"},
		"Bursa":     {"Osmangazi", "Nilüfer", "Yıldırım", "Gürsu", "Kestel", "Mudanya", "Gemlik", "İnegöl"},
		"Antalya":   {"Muratpaşa", "Kepez", "Konyaaltı", "Aksu", "Döşemealtı", "Alanya", "Manavgat", "Serik"},
		"Adana":     {"Seyhan", "Yüreğir", "Çukurova", "Sarıçam", "Ceyhan", "Kozan"},
		"Konya":     {"Selçuklu", "Meram", "Karatay", "Çumra", "Akşehir", "Ereğli"},
		"Gaziantep": {"Şahinbey", "Şehitkamil", "Oğuzeli", "Nizip", "İslahiye"},
		"Mersin":    {"Mezitli", "Yenişehir", "Toroslar", "Akdeniz", "Tarsus", "Erdemli"},
		"Kayseri":   {"Melikgazi", "Kocasinan", "Talas", "Hacılar", "İncesu"},
	})
}

// Cities возвращает отсортированный список городов.
func (d *Directory) Cities() []string {
	return append([]string(nil), d.cities...)
}

// Districts возвращает районы города и признак того, что город известен.
func (d *Directory) Districts(city string) ([]string, bool) {
	districts, ok := d.byCity[city]
	if !ok {
		return nil, false
	}
	return append([]string(nil), districts...), true
}

// All возвращает копию всей таблицы город → районы.
func (d *Directory) All() map[string][]string {
	out := make(map[string][]string, len(d.byCity))
	for city, districts := range d.byCity {
		out[city] = append([]string(nil), districts...)
	}
	return out
}

// HasCity сообщает, обслуживается ли город платформой.
func (d *Directory) HasCity(city string) bool {
	_, ok := d.byCity[city]
	return ok
}
