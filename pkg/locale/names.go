package locale

import "golang.org/x/text/language"

type nameTable struct {
	first []string
	last  []string
}

// names holds locale specific given names and surnames keyed by base
// language. Languages without an entry fall back to the faker's English
// name data.
var names = map[string]nameTable{
	"de": {
		first: []string{"Lukas", "Anna", "Jonas", "Lea", "Felix", "Marie", "Paul", "Sophie", "Maximilian", "Hannah", "Tobias", "Katharina"},
		last:  []string{"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Hoffmann", "Schäfer", "Koch", "Richter"},
	},
	"fr": {
		first: []string{"Lucas", "Emma", "Hugo", "Chloé", "Louis", "Manon", "Gabriel", "Camille", "Arthur", "Léa", "Jules", "Inès"},
		last:  []string{"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy", "Moreau", "Simon", "Laurent"},
	},
	"es": {
		first: []string{"Hugo", "Lucía", "Martín", "Sofía", "Pablo", "María", "Alejandro", "Paula", "Daniel", "Valeria", "Diego", "Carmen"},
		last:  []string{"García", "Rodríguez", "González", "Fernández", "López", "Martínez", "Sánchez", "Pérez", "Gómez", "Díaz", "Torres", "Ramírez"},
	},
	"pt": {
		first: []string{"João", "Maria", "Pedro", "Ana", "Tiago", "Beatriz", "Rafael", "Inês", "Gonçalo", "Mariana", "Miguel", "Carolina"},
		last:  []string{"Silva", "Santos", "Ferreira", "Pereira", "Oliveira", "Costa", "Rodrigues", "Martins", "Sousa", "Fernandes", "Gonçalves", "Almeida"},
	},
	"it": {
		first: []string{"Francesco", "Giulia", "Alessandro", "Sofia", "Lorenzo", "Aurora", "Mattia", "Ginevra", "Leonardo", "Alice", "Andrea", "Chiara"},
		last:  []string{"Rossi", "Russo", "Ferrari", "Esposito", "Bianchi", "Romano", "Colombo", "Ricci", "Marino", "Greco", "Bruno", "Gallo"},
	},
	"nl": {
		first: []string{"Daan", "Emma", "Sem", "Julia", "Lucas", "Mila", "Levi", "Tess", "Finn", "Sophie", "Bram", "Fleur"},
		last:  []string{"de Jong", "Jansen", "de Vries", "van den Berg", "Bakker", "Visser", "Smit", "Meijer", "de Boer", "Mulder", "Bos", "Vos"},
	},
	"pl": {
		first: []string{"Jakub", "Zuzanna", "Antoni", "Julia", "Jan", "Maja", "Szymon", "Zofia", "Filip", "Hanna", "Kacper", "Alicja"},
		last:  []string{"Nowak", "Kowalski", "Wiśniewski", "Wójcik", "Kowalczyk", "Kamiński", "Lewandowski", "Zieliński", "Szymański", "Woźniak", "Dąbrowski", "Kozłowski"},
	},
	"ro": {
		first: []string{"Andrei", "Maria", "Alexandru", "Elena", "Stefan", "Ioana", "Mihai", "Ana", "Gabriel", "Andreea", "David", "Daria"},
		last:  []string{"Popescu", "Ionescu", "Popa", "Pop", "Radu", "Dumitru", "Stan", "Stoica", "Gheorghe", "Matei", "Ciobanu", "Rusu"},
	},
	"sv": {
		first: []string{"William", "Alice", "Oscar", "Maja", "Lucas", "Elsa", "Hugo", "Astrid", "Elias", "Wilma", "Alexander", "Ebba"},
		last:  []string{"Andersson", "Johansson", "Karlsson", "Nilsson", "Eriksson", "Larsson", "Olsson", "Persson", "Svensson", "Gustafsson", "Pettersson", "Jonsson"},
	},
	"no": {
		first: []string{"Jakob", "Nora", "Emil", "Emma", "Noah", "Olivia", "Oliver", "Ella", "Filip", "Sofie", "William", "Leah"},
		last:  []string{"Hansen", "Johansen", "Olsen", "Larsen", "Andersen", "Pedersen", "Nilsen", "Kristiansen", "Jensen", "Karlsen", "Johnsen", "Pettersen"},
	},
	"fi": {
		first: []string{"Eino", "Aino", "Väinö", "Helmi", "Leo", "Aada", "Oliver", "Olivia", "Elias", "Eevi", "Onni", "Linnea"},
		last:  []string{"Korhonen", "Virtanen", "Mäkinen", "Nieminen", "Mäkelä", "Hämäläinen", "Laine", "Heikkinen", "Koskinen", "Järvinen", "Lehtonen", "Lehtinen"},
	},
	"cs": {
		first: []string{"Jakub", "Eliška", "Jan", "Anna", "Tomáš", "Tereza", "Matyáš", "Adéla", "Adam", "Natálie", "Vojtěch", "Sofie"},
		last:  []string{"Novák", "Svoboda", "Novotný", "Dvořák", "Černý", "Procházka", "Kučera", "Veselý", "Horák", "Němec", "Pokorný", "Marek"},
	},
	"hu": {
		first: []string{"Bence", "Hanna", "Máté", "Anna", "Levente", "Zoé", "Dominik", "Léna", "Marcell", "Luca", "Dániel", "Emma"},
		last:  []string{"Nagy", "Kovács", "Tóth", "Szabó", "Horváth", "Varga", "Kiss", "Molnár", "Németh", "Farkas", "Balogh", "Papp"},
	},
	"tr": {
		first: []string{"Yusuf", "Zeynep", "Eymen", "Elif", "Ömer", "Defne", "Mustafa", "Asel", "Kerem", "Azra", "Emir", "Ecrin"},
		last:  []string{"Yılmaz", "Kaya", "Demir", "Şahin", "Çelik", "Yıldız", "Yıldırım", "Öztürk", "Aydın", "Özdemir", "Arslan", "Doğan"},
	},
	"hr": {
		first: []string{"Luka", "Mia", "David", "Lucija", "Jakov", "Ema", "Ivan", "Nika", "Petar", "Marta", "Matej", "Sara"},
		last:  []string{"Horvat", "Kovačević", "Babić", "Marić", "Jurić", "Novak", "Kovačić", "Knežević", "Vuković", "Marković", "Petrović", "Matić"},
	},
	"id": {
		first: []string{"Budi", "Siti", "Agus", "Dewi", "Joko", "Sri", "Rudi", "Ratna", "Hendra", "Putri", "Andi", "Wulan"},
		last:  []string{"Santoso", "Wijaya", "Saputra", "Hidayat", "Pratama", "Nugroho", "Kusuma", "Setiawan", "Halim", "Gunawan", "Susanto", "Lestari"},
	},
	"ru": {
		first: []string{"Александр", "Анна", "Дмитрий", "Мария", "Максим", "Елена", "Иван", "Ольга", "Сергей", "Наталья", "Андрей", "Татьяна"},
		last:  []string{"Иванов", "Смирнов", "Кузнецов", "Попов", "Васильев", "Петров", "Соколов", "Михайлов", "Новиков", "Федоров", "Морозов", "Волков"},
	},
	"uk": {
		first: []string{"Олександр", "Олена", "Андрій", "Ірина", "Сергій", "Наталія", "Микола", "Оксана", "Віктор", "Тетяна", "Богдан", "Юлія"},
		last:  []string{"Мельник", "Шевченко", "Коваленко", "Бондаренко", "Бойко", "Ткаченко", "Кравченко", "Ковальчук", "Коваль", "Олійник", "Шевчук", "Поліщук"},
	},
	"el": {
		first: []string{"Γεώργιος", "Μαρία", "Ιωάννης", "Ελένη", "Κωνσταντίνος", "Αικατερίνη", "Δημήτριος", "Βασιλική", "Νικόλαος", "Σοφία", "Παναγιώτης", "Άννα"},
		last:  []string{"Παπαδόπουλος", "Παππάς", "Οικονόμου", "Γεωργίου", "Νικολάου", "Βασιλείου", "Δημητρίου", "Ιωάννου", "Κωνσταντίνου", "Αθανασίου", "Μακρής", "Αντωνίου"},
	},
	"zh": {
		first: []string{"伟", "芳", "娜", "秀英", "敏", "静", "丽", "强", "磊", "军", "洋", "勇"},
		last:  []string{"王", "李", "张", "刘", "陈", "杨", "黄", "赵", "吴", "周", "徐", "孙"},
	},
	"ja": {
		first: []string{"翔太", "陽菜", "蓮", "結衣", "大翔", "葵", "悠真", "凛", "湊", "芽依", "樹", "さくら"},
		last:  []string{"佐藤", "鈴木", "高橋", "田中", "伊藤", "渡辺", "山本", "中村", "小林", "加藤", "吉田", "山田"},
	},
	"ko": {
		first: []string{"민준", "서연", "서준", "서윤", "도윤", "지우", "예준", "하은", "시우", "민서", "주원", "지유"},
		last:  []string{"김", "이", "박", "최", "정", "강", "조", "윤", "장", "임", "한", "오"},
	},
}

func namesFor(tag language.Tag) (nameTable, bool) {
	base, _ := tag.Base()
	table, ok := names[base.String()]
	return table, ok
}
