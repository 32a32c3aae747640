package catalog

const defaultCatalog = `
products:
  - id: year-5-naplan
    name: Year 5 NAPLAN
    writing_max_points: 48
    sections:
      - {name: Writing, minutes: 42}
      - {name: Reading, minutes: 50}
      - {name: Language Conventions, minutes: 45}
      - {name: Numeracy, minutes: 50}
  - id: year-7-naplan
    name: Year 7 NAPLAN
    writing_max_points: 48
    sections:
      - {name: Writing, minutes: 42}
      - {name: Reading, minutes: 65}
      - {name: Language Conventions, minutes: 45}
      - {name: Numeracy, minutes: 65}
  - id: acer-scholarship
    name: ACER Scholarship (Year 7 Entry)
    writing_max_points: 20
    sections:
      - {name: Written Expression, minutes: 25}
      - {name: Mathematics, minutes: 47}
      - {name: Humanities, minutes: 47}
  - id: edutest-scholarship
    name: EduTest Scholarship (Year 7 Entry)
    writing_max_points: 15
    sections:
      - {name: Verbal Reasoning, minutes: 30}
      - {name: Numerical Reasoning, minutes: 30}
      - {name: Reading Comprehension, minutes: 30}
      - {name: Mathematics, minutes: 30}
      - {name: Written Expression, minutes: 30}
  - id: nsw-selective
    name: NSW Selective Entry (Year 7 Entry)
    writing_max_points: 50
    sections:
      - {name: Reading, minutes: 40}
      - {name: Mathematical Reasoning, minutes: 40}
      - {name: Thinking Skills, minutes: 40}
      - {name: Writing, minutes: 30}
  - id: vic-selective
    name: VIC Selective Entry (Year 9 Entry)
    writing_max_points: 30
    sections:
      - {name: Reading Reasoning, minutes: 35}
      - {name: Mathematical Reasoning, minutes: 30}
      - {name: General Ability - Verbal, minutes: 30}
      - {name: General Ability - Quantitative, minutes: 30}
      - {name: Writing, minutes: 40}
`
