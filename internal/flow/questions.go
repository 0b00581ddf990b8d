package flow

// Prompts holds the 22 question texts in order. Prompts[7] belongs to the
// voice relay and is never sent.
var Prompts = [22]string{
	"1/22. Ism-familyangizni yozing:",
	"2/22. Telefon raqamingizni yozing:\n\nMisol: +998909998877",
	"3/22. Doimiy yashash manzilingizni yozing (propiska):",
	"4/22. O'z tug'ilgan kuningizni 01.01.2000 formatda yozing:",
	"5/22. Ma'lumotingiz (tugmani tanlang yoki yozing):",
	"6/22. Oldin qaysi korxonalarda va qaysi lavozimda ishlagansiz?\n\nMisol:\n1. Perfect Consulting Group - Sotuv menejeri\n2. Alora - sotuvchi\n3. Ishlamaganman",
	"7/22. Oila qurganmisiz?",
	"8/22. Ovozli savol.",
	"9/22. Iltimos, ovozli xabar yuboring (mikrofonga yozib).",
	"10/22. Rus tilini qay darajada bilasiz?",
	"11/22. Iltimos, qisqa video yuboring (selfie video).",
	"12/22. Oxirgi ish joyingizdan siz haqingizda surishtirishimizga rozimisiz? (ha/yo'q)",
	"13/22. Oxirgi ish joyingizdan kim sizga tavsiya xati bera oladi, nomi, ishlash joyi, lavozimi, telefon raqami:\n\nMisol: Direktor - Malika Akramovna - Nona collection - +998909998877",
	"14/22. Bizning korxonada qancha muddat ishlamoqchisiz?",
	"15/22. Korxonada ishdan keyin ham qolib ishlash kerak bo‘lib qolsa ishlaysizmi?",
	"16/22. Sog‘ligingizda muammo yo‘qmi?",
	"17/22. Nima uchun ayrim odamlar ishga kech kelishadi?",
	"18/22. Nima uchun ayrim insonlar o'g'rilik qilishadi?",
	"19/22. Nima uchun ayrim ishchilar yaxshi ishlashadi, ayrimlari yomon? Bunga sabab nima?",
	"20/22. Oldingi ishxonangizda qancha maoshga ishlgansiz?",
	"21/22. Bizning ishxonamizda qancha maoshga ishlamoqchisiz?",
	"22/22. Qanday kurslarda o’qigansiz?",
}

// Choice options.
var (
	EducationOptions = []string{"o'rta", "o'rta maxsus", "oliy"}
	MaritalOptions   = []string{"turmush qurganman", "turmush qurmaganman", "ajrashganman"}
	RussianOptions   = []string{"a'lo", "yaxshi", "past", "bilmayman"}
	ConsentOptions   = []string{"ha", "yoq"}
)

// Fixed messages.
const (
	StartCaption   = "Assalomu alaykum! 👋 Ish turini tanlang va qisqa anketani to‘ldiring."
	MenuText       = "👇 Ish turini tanlang:"
	StaleNotice    = "⚠️ Hozir bu tugmani bosish mumkin emas."
	StartHint      = "Anketani boshlash uchun /start buyrug'ini yuboring."
	AckSelected    = "Tanlandi ✅"
	AckAccepted    = "Qabul qilindi ✅"
	PhoneRetry     = "📞 Telefon raqamini to‘g‘ri formatda yozing. Misol: +998909998877"
	DateRetry      = "Tug'ilgan kuningizni 01.01.2000 formatda yozing."
	VoiceRetry     = "📢 Iltimos, ovozli xabar yuboring (voice)."
	VideoRetry     = "🎥 Iltimos, qisqa video yuboring (kamera orqali)."
	ContactButton  = "📱 Telefon raqamini yuborish"
	CompletionText = "✅ Ma'lumotlaringiz qabul qilindi. Tez orada xabarini beramiz!"
)
