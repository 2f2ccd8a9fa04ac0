package phonetic

// ZLine is the table used for the za-row recordings: hiragana za row, the
// katakana ga, da and pa rows and the hiragana ba and pa rows. Lookups are
// literal; katakana outside the table is Other.
var ZLine = register(&Table{
	Name: "zline",
	labels: map[rune]string{
		'ざ': "za", 'じ': "ji", 'ず': "zu", 'ぜ': "ze", 'ぞ': "zo",
		'ガ': "ga", 'ギ': "gi", 'グ': "gu", 'ゲ': "ge", 'ゴ': "go",
		'ば': "ba", 'び': "bi", 'ぶ': "bu", 'べ': "be", 'ぼ': "bo",
		'ダ': "da", 'ヂ': "di", 'ヅ': "du", 'デ': "de", 'ド': "do",
		'パ': "pa", 'ピ': "pi", 'プ': "pu", 'ペ': "pe", 'ポ': "po",
		'ぱ': "pa", 'ぴ': "pi", 'ぷ': "pu", 'ぺ': "pe", 'ぽ': "po",
	},
})

// Voiced covers every dakuten and handakuten row, with katakana folded.
var Voiced = register(&Table{
	Name:     "voiced",
	foldKana: true,
	labels: map[rune]string{
		'が': "ga", 'ぎ': "gi", 'ぐ': "gu", 'げ': "ge", 'ご': "go",
		'ざ': "za", 'じ': "ji", 'ず': "zu", 'ぜ': "ze", 'ぞ': "zo",
		'だ': "da", 'ぢ': "di", 'づ': "du", 'で': "de", 'ど': "do",
		'ば': "ba", 'び': "bi", 'ぶ': "bu", 'べ': "be", 'ぼ': "bo",
		'ぱ': "pa", 'ぴ': "pi", 'ぷ': "pu", 'ぺ': "pe", 'ぽ': "po",
		'ゔ': "vu",
	},
})

// ZRow is the za row alone, katakana folded.
var ZRow = register(&Table{
	Name:     "zrow",
	foldKana: true,
	labels: map[rune]string{
		'ざ': "za", 'じ': "ji", 'ず': "zu", 'ぜ': "ze", 'ぞ': "zo",
	},
})
