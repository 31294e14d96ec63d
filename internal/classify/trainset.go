package classify

import "internradar/internal/model"

type trainingSample struct {
	title    string
	category model.Category
}

// trainingTitles is the fixed curated set the fallback model is trained on.
// Changing it changes classification of titles that miss every keyword rule,
// so treat it as part of the classifier contract.
var trainingTitles = []trainingSample{
	{"Software Engineer Intern", model.CategorySoftware},
	{"Frontend Developer", model.CategorySoftware},
	{"Backend Developer", model.CategorySoftware},
	{"Full Stack Engineer", model.CategorySoftware},
	{"Web Developer Intern", model.CategorySoftware},
	{"Mobile App Developer", model.CategorySoftware},
	{"iOS Engineer", model.CategorySoftware},
	{"Android Developer Intern", model.CategorySoftware},
	{"Machine Learning Engineer", model.CategorySoftware},
	{"Data Scientist", model.CategorySoftware},
	{"DevOps Engineer", model.CategorySoftware},
	{"Site Reliability Engineer", model.CategorySoftware},
	{"Cloud Engineer", model.CategorySoftware},
	{"Software Development Engineer", model.CategorySoftware},
	{"Python Developer", model.CategorySoftware},
	{"JavaScript Engineer", model.CategorySoftware},
	{"React Developer", model.CategorySoftware},
	{"QA Engineer (Software)", model.CategorySoftware},
	{"Software Test Engineer", model.CategorySoftware},

	{"Hardware Engineer Intern", model.CategoryHardware},
	{"Electrical Engineer", model.CategoryHardware},
	{"PCB Designer", model.CategoryHardware},
	{"FPGA Engineer", model.CategoryHardware},
	{"Embedded Systems Engineer", model.CategoryHardware},
	{"IC Design Engineer", model.CategoryHardware},
	{"RF Engineer", model.CategoryHardware},
	{"ASIC Design Intern", model.CategoryHardware},
	{"Power Electronics Engineer", model.CategoryHardware},
	{"Hardware Test Engineer", model.CategoryHardware},
	{"Systems Engineer (Hardware)", model.CategoryHardware},
	{"Digital Design Engineer", model.CategoryHardware},
	{"Analog Circuit Designer", model.CategoryHardware},
	{"Electronics Engineer", model.CategoryHardware},
	{"Signal Integrity Engineer", model.CategoryHardware},
	{"Hardware Validation Engineer", model.CategoryHardware},
	{"Firmware Engineer", model.CategoryHardware},
	{"Mixed Signal Engineer", model.CategoryHardware},
	{"Silicon Design Engineer", model.CategoryHardware},
}
