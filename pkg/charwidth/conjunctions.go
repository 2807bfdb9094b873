package charwidth

// Japanese conjunctions that may stand alone at the head of a sentence.
// A line is flushed after "<conjunction>、" so the connective keeps its
// own line when text is folded. Entries are regular expressions.
var conjunctions = []string{
	"しかし[，、]だからといって",
	"(?:こ|そ|あ|ど)うなると",
	"(?:こ|そ|あ|ど)うなれば",
	"(?:こ|そ|あ|ど)のうえ", "(?:こ|そ|あ|ど)の上",
	"(?:こ|そ|あ|ど)のうえで", "(?:こ|そ|あ|ど)の上で",
	"(?:こ|そ|あ|ど)のかわり", "(?:こ|そ|あ|ど)の代わり",
	"(?:こ|そ|あ|ど)のくせ",
	"(?:こ|そ|あ|ど)のことから",
	"(?:こ|そ|あ|ど)のため",
	"(?:こ|そ|あ|ど)のためには",
	"(?:こ|そ|あ|ど)のなかでも", "(?:こ|そ|あ|ど)の中でも",
	"(?:こ|そ|あ|ど)のような中",
	"(?:こ|そ|あ|ど)のように",
	"(?:こ|そ|あ|ど)のようにして",
	"(?:こ|そ|あ|ど)の反面",
	"(?:こ|そ|あ|ど)の場合",
	"(?:こ|そ|あ|ど)の後",
	"(?:こ|そ|あ|ど)の結果",
	"(?:こ|そ|あ|ど)の際",
	"(?:こ|そ|あ|ど)れから",
	"(?:こ|そ|あ|ど)れで",
	"(?:こ|そ|あ|ど)れでこそ",
	"(?:こ|そ|あ|ど)れでは",
	"(?:こ|そ|あ|ど)れでも",
	"(?:こ|そ|あ|ど)れどころか",
	"(?:こ|そ|あ|ど)れなのに",
	"(?:こ|そ|あ|ど)れなら",
	"(?:こ|そ|あ|ど)れに",
	"(?:こ|そ|あ|ど)れにしても",
	"(?:こ|そ|あ|ど)れには",
	"(?:こ|そ|あ|ど)れにもかかわらず",
	"(?:こ|そ|あ|ど)れによって",
	"(?:こ|そ|あ|ど)れに加えて",
	"(?:こ|そ|あ|ど)れに対して",
	"(?:こ|そ|あ|ど)ればかりか",
	"(?:こ|そ|あ|ど)ればかりでなく",
	"(?:こ|そ|あ|ど)れゆえ", "(?:こ|そ|あ|ど)れ故",
	"(?:こ|そ|あ|ど)れゆえに", "(?:こ|そ|あ|ど)れ故に",
	"(?:こ|そ|あ|ど)れより",
	"(?:こ|そ|あ|ど)れよりは",
	"(?:こ|そ|あ|ど)れよりも",
	"(?:こ|そ|あ|ど)れらのことから",
	"(?:こ|そ|あ|ど)れらを踏まえて",
	"(?:こ|そ|あ|ど)んな中",
	"(?:こ|そ|あそ|ど)こで",
	"(?:こう|そう|ああ|どう)いえば",
	"(?:こう|そう|ああ|どう)したところ",
	"(?:こう|そう|ああ|どう)したら",
	"(?:こう|そう|ああ|どう)して",
	"(?:こう|そう|ああ|どう)してみると",
	"(?:こう|そう|ああ|どう)しなければ",
	"(?:こう|そう|ああ|どう)することで",
	"(?:こう|そう|ああ|どう)すると",
	"(?:こう|そう|ああ|どう)すれば",
	"(?:こう|そう|ああ|どう)だからといって",
	"(?:こう|そう|ああ|どう)だとしても",
	"(?:こう|そう|ああ|どう)だとすると",
	"(?:こう|そう|ああ|どう)だとすれば",
	"(?:こう|そう|ああ|どう)であるにもかかわらず",
	"(?:こう|そう|ああ|どう)でないならば",
	"(?:こう|そう|ああ|どう)ではあるが",
	"(?:こう|そう|ああ|どう)ではなく",
	"(?:こう|そう|ああ|どう)はいうものの",
	"[1-9１-９一二三四五六七八九]つ目は",
	"[1-9１-９一二三四五六七八九]点目は",
	"[1１一]つは", "もう[1１一]つは", "[2-9２-９二三四五六七八九]つには",
	"[1１一]点は", "もう[1１一]点は",
	"あと", "後",
	"あるいは",
	"いうならば", "言うならば",
	"いうなれば", "言うなれば",
	"いずれにしても",
	"いずれにしろ",
	"いずれにせよ",
	"いってみれば", "言ってみれば",
	"いわば",
	"いわんや",
	"おまけに",
	"および", "及び",
	"かえって", "却って", "反って",
	"かくして", "斯くして",
	"かつ", "且つ",
	"が",
	"けだし", "蓋し",
	"けど",
	"けれど",
	"けれども",
	"さて",
	"さもないと",
	"さらに", "更に",
	"さらにいえば",
	"しかし",
	"しかしながら",
	"しかも",
	"しかるに", "然るに",
	"したがって", "従って",
	"してみると",
	"じつは", "実は",
	"すなわち",
	"すると",
	"そして",
	"そもそも",
	"それとも",
	"それはさておき",
	"それはそうと",
	"たしかに", "確かに",
	"ただ",
	"ただし",
	"たとえば", "例えば",
	"だから",
	"だからこそ",
	"だからといって",
	"だが",
	"だけど",
	"だって",
	"だとしたら",
	"だとしても",
	"だとすると",
	"だとすれば",
	"ちなみに", "因みに",
	"つぎに", "次に",
	"つまり",
	"つまるところ", "詰まる所",
	"ですが",
	"では",
	"でも",
	"というか",
	"というのは",
	"というのも",
	"というより",
	"というよりも",
	"ときに", "時に",
	"ところが",
	"ところで",
	"となると",
	"となれば",
	"とにかく",
	"とにもかくにも",
	"とはいうものの",
	"とはいえ",
	"とはいっても",
	"ともあれ",
	"ともかく",
	"とりわけ", "取分け",
	"どころか",
	"どちらにしても",
	"どちらにせよ",
	"どっちにしても",
	"どっちにせよ",
	"どっち道", "どっちみち",
	"どのみち", "どの道",
	"なお", "尚",
	"なおさら", "尚更",
	"なかでも", "中でも",
	"なぜかというと", "何故かというと",
	"なぜかといえば", "何故かといえば",
	"なぜなら", "何故なら",
	"なぜならば", "何故ならば",
	"なにしろ", "何しろ",
	"なにせ", "何せ",
	"なので",
	"なのに",
	"ならば",
	"ならびに", "並びに",
	"なるほど", "成程",
	"にもかかわらず",
	"のに",
	"はじめに", "初めに", "始めに", "おわりに", "終わりに", "終りに",
	"ひいては", "延いては",
	"まして",
	"ましてや",
	"まず", "先ず",
	"また", "又",
	"または", "又は",
	"むしろ",
	"むろん", "無論",
	"もし",
	"もしかしたら",
	"もしくは", "若しくは",
	"もしも",
	"もちろん", "勿論",
	"もっとも", "尤も",
	"ものの",
	"ゆえに", "故に",
	"よって", "因って",
	"一方", "他方",
	"一方で", "他方で",
	"一方では", "他方では",
	"一般的",
	"一般的に",
	"事実",
	"他には",
	"他にも",
	"以上",
	"以上から",
	"以上のように",
	"以上を踏まえて",
	"仮に",
	"仮にも",
	"具体的には",
	"加えて",
	"反対に",
	"反面",
	"同じく",
	"同じように",
	"同時に",
	"同様に",
	"実のところ",
	"実を言うと",
	"実を言えば",
	"実際",
	"実際に",
	"対して",
	"当たり前ですが",
	"当然ですが",
	"換言すると",
	"普通",
	"最初に", "最後に",
	"次いで",
	"殊に",
	"特に",
	"現に",
	"百歩譲って",
	"百歩譲って仮に",
	"第[1-9１-９一二三四五六七八九]に",
	"結局",
	"結果として",
	"結果的に",
	"続いて",
	"裏を返せば",
	"裏返せば",
	"要するに",
	"要は",
	"言い換えると",
	"言ってみれば",
	"逆に",
	"逆に言えば",
	"通常",
}
