package models

const DefaultHeroImage = "https://images.unsplash.com/photo-1599321666498-b8a74e507b67?auto=format&fit=crop&w=1920&q=80"

// Editable text slots rendered by the page.
const (
	SlotHeroTitle = "hero-title"
	SlotHeroLead  = "hero-lead"
	SlotAbout     = "about-p1"
	SlotContact   = "contact-p1"
)

// DefaultSiteData is the document written when the site is loaded for the first time.
func DefaultSiteData() SiteData {
	return SiteData{
		Dentists: []Dentist{
			{
				ID:          1,
				Initials:    "TB",
				Name:        "Dra. Tatiane Baptista Simão",
				Specialty:   "Odontopediatria — CRO 125483",
				Description: "Especialista em cuidar de sorrisos infantis com paciência, técnica e sensibilidade.\nTransforma cada atendimento em uma experiência leve e acolhedora para as crianças — sempre com foco na prevenção e no bem-estar desde os primeiros dentinhos.",
				Avatar:      "https://drive.google.com/uc?export=view&id=1gdlLXgPiLiK7Zk58aSFBwpLzdI5KKGjV",
			},
		},
		Services: []Service{
			{ID: 1, Title: "Limpeza e Prevenção", Description: "Profilaxia, orientação e manutenção da saúde bucal."},
			{ID: 2, Title: "Restaurações Estéticas", Description: "Resinas artísticas e tratamentos conservadores."},
			{ID: 3, Title: "Clareamento Dental", Description: "Protocolos seguros para um sorriso mais branco."},
			{ID: 4, Title: "Odontopediatria", Description: "Atendimento infantil com abordagem lúdica e acolhedora."},
			{ID: 5, Title: "Tratamento de Canal", Description: "Procedimentos com controle de dor e técnica atualizada."},
			{ID: 6, Title: "Próteses e Reabilitação", Description: "Reabilitação funcional e estética com próteses modernas."},
		},
		Testimonials: []Testimonial{
			{ID: 1, Quote: "“Excelente atendimento! Me senti muito à vontade desde a recepção até o final do tratamento. A Dra. é extremamente profissional e atenciosa.”", Author: "Mariana S.", Rating: 5, Avatar: "https://i.pravatar.cc/150?u=mariana"},
			{ID: 2, Quote: "“Minha filha adorou. A Dra. Tatiane é muito calma e carinhosa com as crianças, o que fez toda a diferença. Recomendo de olhos fechados!”", Author: "Rafael L.", Rating: 5, Avatar: "https://i.pravatar.cc/150?u=rafael"},
		},
		GalleryImages: []GalleryImage{
			{ID: 1, Src: "https://drive.google.com/file/d/1CO5EDAcrMDEErf91KFOwGaK0mPZ7z2-2/view?usp=sharing", Caption: "Onde o cuidado começa com um sorriso.\nNossa equipe recebe cada paciente com atenção e carinho."},
			{ID: 2, Src: "https://drive.google.com/file/d/1wx7EdwRFupYDql7s5BK9tkaA3RoCGsqC/view?usp=sharing", Caption: "Um cantinho preparado para o seu conforto.\nUm ambiente tranquilo para aguardar com leveza e bem-estar."},
			{ID: 3, Src: "https://drive.google.com/file/d/1xolVv1doMA7JPKeTemKHvNn6wAtlxDc6/view?usp=sharing", Caption: "Cada conversa é feita com escuta e empatia.\nAqui planejamos o melhor cuidado para cada sorriso."},
			{ID: 4, Src: "https://drive.google.com/file/d/1QM9uzIkgb_2U_AGooXo-dyIb779N7LsG/view?usp=sharing", Caption: "Um espaço pensado para cuidar de você com calma e delicadeza.\nAqui cada detalhe foi preparado para o seu conforto."},
			{ID: 5, Src: "https://drive.google.com/file/d/1EZOj7ngtI8gVLFWf-WyfSv1cGICFHuLp/view?usp=sharing", Caption: "Um ambiente que transmite confiança e cuidado.\nOnde cada atendimento é feito com atenção e dedicação."},
			{ID: 6, Src: "https://drive.google.com/file/d/1CO5EDAcrMDEErf91KFOwGaK0mPZ7z2-2/view?usp=sharing", Caption: "Onde o cuidado começa com um sorriso.\nNossa equipe recebe cada paciente com atenção e carinho."},
		},
		HeroImage: DefaultHeroImage,
		EditableContent: map[string]string{
			SlotHeroTitle: "Excelência em Odontologia.\nO cuidado que seu sorriso merece.",
			SlotHeroLead:  "Equipe de especialistas dedicados a oferecer o melhor tratamento odontológico para você e sua família.",
			SlotAbout:     "Localizada em Mirassol, a Odontologia Pedro é referência em atendimento acolhedor e tratamentos de qualidade. Cuidamos do seu sorriso com empatia, técnica e tecnologia de ponta para garantir os melhores resultados.",
			SlotContact:   "Estamos prontos para atender você. Agende sua consulta pelo WhatsApp ou ligue para nós. Venha nos conhecer e descubra um novo conceito em odontologia.",
		},
		SocialLinks: &SocialLinks{
			Instagram: "https://www.instagram.com/odontologiapedro?igsh=bHVxMTR4djh5Nzg3",
		},
		Theme:             ThemeLight,
		Layout:            LayoutDefault,
		PrimaryColor:      "#0D2C54",
		HeroTitleFontSize: 96,
	}
}
