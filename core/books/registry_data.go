package books

func ot(order int, name string, aliases ...string) Book {
	return Book{ID: Slug(name), Name: name, Group: GroupCanon, Testament: "OT", Order: order, Aliases: aliases}
}

func nt(order int, name string, aliases ...string) Book {
	return Book{ID: Slug(name), Name: name, Group: GroupCanon, Testament: "NT", Order: order, Aliases: aliases}
}

func apoc(order int, name string, aliases ...string) Book {
	return Book{ID: Slug(name), Name: name, Group: GroupApocrypha, Order: order, Aliases: aliases}
}

func pseud(order int, name string, aliases ...string) Book {
	return Book{ID: Slug(name), Name: name, Group: GroupPseudepigrapha, Order: order, Aliases: aliases}
}

// registryData is the built-in book table in canonical order.
var registryData = []Book{
	// Old Testament
	ot(1, "Genesis", "Gen", "Ge", "Gn"),
	ot(2, "Exodus", "Exod", "Exo", "Ex"),
	ot(3, "Leviticus", "Lev", "Le", "Lv"),
	ot(4, "Numbers", "Num", "Nu", "Nm", "Nb"),
	ot(5, "Deuteronomy", "Deut", "Deu", "Dt"),
	ot(6, "Joshua", "Josh", "Jos", "Jsh"),
	ot(7, "Judges", "Judg", "Jdg", "Jg", "Jdgs"),
	ot(8, "Ruth", "Rth", "Ru"),
	ot(9, "1 Samuel", "1 Sam", "1 Sa", "1 Sm", "I Samuel"),
	ot(10, "2 Samuel", "2 Sam", "2 Sa", "2 Sm", "II Samuel"),
	ot(11, "1 Kings", "1 Kgs", "1 Ki", "I Kings"),
	ot(12, "2 Kings", "2 Kgs", "2 Ki", "II Kings"),
	ot(13, "1 Chronicles", "1 Chr", "1 Chron", "1 Ch", "I Chronicles"),
	ot(14, "2 Chronicles", "2 Chr", "2 Chron", "2 Ch", "II Chronicles"),
	ot(15, "Ezra", "Ezr", "Esra"),
	ot(16, "Nehemiah", "Neh", "Ne"),
	ot(17, "Esther", "Esth", "Est", "Es"),
	ot(18, "Job", "Jb", "Iob"),
	ot(19, "Psalms", "Ps", "Psa", "Psalm", "Pss", "Psm"),
	ot(20, "Proverbs", "Prov", "Pro", "Prv", "Pr"),
	ot(21, "Ecclesiastes", "Eccl", "Ecc", "Eccles", "Qoh", "Qoheleth"),
	ot(22, "Song of Solomon", "Song", "Song of Songs", "SOS", "Canticles", "Cant", "Sg"),
	ot(23, "Isaiah", "Isa", "Is"),
	ot(24, "Jeremiah", "Jer", "Je", "Jr"),
	ot(25, "Lamentations", "Lam", "La"),
	ot(26, "Ezekiel", "Ezek", "Eze", "Ezk"),
	ot(27, "Daniel", "Dan", "Da", "Dn"),
	ot(28, "Hosea", "Hos", "Ho"),
	ot(29, "Joel", "Jl"),
	ot(30, "Amos", "Am"),
	ot(31, "Obadiah", "Obad", "Ob", "Oba"),
	ot(32, "Jonah", "Jon", "Jnh"),
	ot(33, "Micah", "Mic", "Mc"),
	ot(34, "Nahum", "Nah", "Na"),
	ot(35, "Habakkuk", "Hab", "Hb"),
	ot(36, "Zephaniah", "Zeph", "Zep", "Zp"),
	ot(37, "Haggai", "Hag", "Hg"),
	ot(38, "Zechariah", "Zech", "Zec", "Zc"),
	ot(39, "Malachi", "Mal", "Ml"),

	// New Testament
	nt(40, "Matthew", "Matt", "Mat", "Mt"),
	nt(41, "Mark", "Mrk", "Mk", "Mr"),
	nt(42, "Luke", "Luk", "Lk"),
	nt(43, "John", "Jn", "Joh", "Jhn"),
	nt(44, "Acts", "Act", "Ac"),
	nt(45, "Romans", "Rom", "Ro", "Rm"),
	nt(46, "1 Corinthians", "1 Cor", "1 Co", "I Corinthians"),
	nt(47, "2 Corinthians", "2 Cor", "2 Co", "II Corinthians"),
	nt(48, "Galatians", "Gal", "Ga"),
	nt(49, "Ephesians", "Eph", "Ephes"),
	nt(50, "Philippians", "Phil", "Php", "Pp"),
	nt(51, "Colossians", "Col"),
	nt(52, "1 Thessalonians", "1 Thess", "1 Th", "I Thessalonians"),
	nt(53, "2 Thessalonians", "2 Thess", "2 Th", "II Thessalonians"),
	nt(54, "1 Timothy", "1 Tim", "1 Ti", "I Timothy"),
	nt(55, "2 Timothy", "2 Tim", "2 Ti", "II Timothy"),
	nt(56, "Titus", "Tit"),
	nt(57, "Philemon", "Phlm", "Philem", "Phm"),
	nt(58, "Hebrews", "Heb"),
	nt(59, "James", "Jas", "Jm"),
	nt(60, "1 Peter", "1 Pet", "1 Pe", "1 Pt", "I Peter"),
	nt(61, "2 Peter", "2 Pet", "2 Pe", "2 Pt", "II Peter"),
	nt(62, "1 John", "1 Jn", "1 Jhn", "1 Jo", "I John"),
	nt(63, "2 John", "2 Jn", "2 Jhn", "2 Jo", "II John"),
	nt(64, "3 John", "3 Jn", "3 Jhn", "3 Jo", "III John"),
	nt(65, "Jude", "Jd"),
	nt(66, "Revelation", "Rev", "Re", "Rv", "Revelations"),

	// Apocrypha
	apoc(67, "Tobit", "Tob", "Tb"),
	apoc(68, "Judith", "Jdt", "Jdth"),
	apoc(69, "Additions to Esther", "Add Esth", "Esth Gr", "Greek Esther"),
	apoc(70, "Wisdom of Solomon", "Wis", "Wisd", "Wisdom", "Ws"),
	apoc(71, "Sirach", "Sir", "Ecclesiasticus", "Ecclus", "Ben Sira"),
	apoc(72, "Baruch", "Bar", "Ba"),
	apoc(73, "Letter of Jeremiah", "Let Jer", "Ep Jer", "Epistle of Jeremiah"),
	apoc(74, "Prayer of Azariah", "Pr Azar", "Azariah", "Song of the Three Young Men"),
	apoc(75, "Susanna", "Sus"),
	apoc(76, "Bel and the Dragon", "Bel", "Bel Dragon"),
	apoc(77, "1 Maccabees", "1 Macc", "1 Mac", "I Maccabees"),
	apoc(78, "2 Maccabees", "2 Macc", "2 Mac", "II Maccabees"),
	apoc(79, "3 Maccabees", "3 Macc", "3 Mac", "III Maccabees"),
	apoc(80, "4 Maccabees", "4 Macc", "4 Mac", "IV Maccabees"),
	apoc(81, "1 Esdras", "1 Esd", "1 Esdr", "I Esdras"),
	apoc(82, "2 Esdras", "2 Esd", "2 Esdr", "4 Ezra", "II Esdras"),
	apoc(83, "Prayer of Manasseh", "Pr Man", "Manasseh", "Prayer of Manasses"),
	apoc(84, "Psalm 151", "Ps151", "Ps 151"),

	// Pseudepigrapha
	pseud(85, "1 Enoch", "1 En", "Ethiopic Enoch", "Enoch"),
	pseud(86, "2 Enoch", "2 En", "Slavonic Enoch"),
	pseud(87, "3 Enoch", "3 En", "Hebrew Enoch"),
	pseud(88, "Jubilees", "Jub", "Book of Jubilees"),
	pseud(89, "Psalms of Solomon", "Pss Sol", "Ps Sol"),
	pseud(90, "Odes of Solomon", "Odes Sol", "Odes"),
	pseud(91, "Letter of Aristeas", "Let Aris", "Aristeas"),
	pseud(92, "Testaments of the Twelve Patriarchs", "T12P", "Test XII", "Testaments of the Twelve"),
	pseud(93, "Assumption of Moses", "As Mos", "Testament of Moses", "T Mos"),
	pseud(94, "Ascension of Isaiah", "Asc Isa", "Mart Ascen Isa"),
	pseud(95, "Life of Adam and Eve", "LAE", "Apocalypse of Moses"),
	pseud(96, "Joseph and Aseneth", "Jos Asen"),
	pseud(97, "2 Baruch", "2 Bar", "Syriac Baruch"),
	pseud(98, "4 Baruch", "4 Bar", "Paraleipomena Jeremiou"),
	pseud(99, "Apocalypse of Abraham", "Apoc Ab", "ApAb"),
}
